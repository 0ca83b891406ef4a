package api

import (
	"net"
	"time"

	"github.com/valyala/fasthttp"
)

// ConnectionConfig holds the fasthttp client settings.
type ConnectionConfig struct {
	MaxConnsPerHost     int           `json:"max_conns_per_host"`
	MaxIdleConnDuration time.Duration `json:"max_idle_conn_duration"`
	DialTimeout         time.Duration `json:"dial_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout"`
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxConnsPerHost:     32,
		MaxIdleConnDuration: 90 * time.Second,
		DialTimeout:         10 * time.Second,
		// task_get for 100-deep SERPs can be large
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func newFastHTTPClient(cfg ConnectionConfig) *fasthttp.Client {
	dialer := &fasthttp.TCPDialer{Concurrency: cfg.MaxConnsPerHost}
	return &fasthttp.Client{
		Name:                "seo-cluster/1.0",
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		MaxIdleConnDuration: cfg.MaxIdleConnDuration,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Dial: func(addr string) (net.Conn, error) {
			return dialer.DialTimeout(addr, cfg.DialTimeout)
		},
	}
}
