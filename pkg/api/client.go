package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"seo-cluster/pkg/logger"
)

const (
	SandboxBaseURL = "https://sandbox.dataforseo.com"
	LiveBaseURL    = "https://api.dataforseo.com"

	serpTaskPostPath     = "/v3/serp/google/organic/task_post"
	serpTaskGetPath      = "/v3/serp/google/organic/task_get/advanced/"
	volumeTaskPostPath   = "/v3/keywords_data/google_ads/search_volume/task_post"
	volumeTaskGetPath    = "/v3/keywords_data/google_ads/search_volume/task_get/"
	difficultyLivePath   = "/v3/dataforseo_labs/google/bulk_keyword_difficulty/live"
	searchIntentLivePath = "/v3/dataforseo_labs/google/search_intent/live"

	serpDepth = 100
)

type Config struct {
	Login             string        `mapstructure:"login"`
	Password          string        `mapstructure:"password"`
	Sandbox           bool          `mapstructure:"sandbox"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`

	// CircuitMaxFailures consecutive transport failures open the circuit; 0 disables it.
	CircuitMaxFailures  int           `mapstructure:"circuit_max_failures"`
	CircuitResetTimeout time.Duration `mapstructure:"circuit_reset_timeout"`
}

// ResolveBaseURL returns BaseURL if set, otherwise the sandbox or live host.
func (c Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Sandbox {
		return SandboxBaseURL
	}
	return LiveBaseURL
}

// Client talks to the DataForSEO v3 API.
type Client struct {
	baseURL   string
	authValue string
	timeout   time.Duration
	http      *fasthttp.Client
	retry     *SimpleRetry
	limiter   *rate.Limiter
	breaker   *CircuitBreaker
	log       *logger.SecurityLogger

	totalRequests  uint64
	failedRequests uint64
}

func NewClient(cfg Config) (*Client, error) {
	return NewClientWithConnection(cfg, DefaultConnectionConfig())
}

func NewClientWithConnection(cfg Config, conn ConnectionConfig) (*Client, error) {
	if cfg.Login == "" || cfg.Password == "" {
		return nil, ErrNoCredentials
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CircuitResetTimeout <= 0 {
		cfg.CircuitResetTimeout = 30 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	c := &Client{
		baseURL:   cfg.ResolveBaseURL(),
		authValue: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Login+":"+cfg.Password)),
		timeout:   cfg.Timeout,
		http:      newFastHTTPClient(conn),
		retry:     NewSimpleRetry(cfg.MaxRetries, cfg.RetryDelay),
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   NewCircuitBreaker(cfg.CircuitMaxFailures, cfg.CircuitResetTimeout),
		log:       logger.GetSecurityLogger(logger.GetLogger().WithField("component", "dataforseo_client")),
	}
	c.log.SafeDebug("DataForSEO client created", map[string]interface{}{
		"base_url": c.baseURL,
		"login":    cfg.Login,
	})
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostSERPTasks posts one organic SERP task per keyword. Task ids in the
// response are in the same order as keywords.
func (c *Client) PostSERPTasks(ctx context.Context, keywords []string, target Target) (*Response, error) {
	tasks := make([]map[string]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		tasks = append(tasks, map[string]interface{}{
			"keyword":       kw,
			"location_code": target.LocationCode,
			"language_code": target.LanguageCode,
			"device":        target.Device,
			"depth":         serpDepth,
		})
	}
	return c.do(ctx, "post serp tasks", fasthttp.MethodPost, serpTaskPostPath, tasks)
}

func (c *Client) GetSERPTask(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, "get serp task", fasthttp.MethodGet, serpTaskGetPath+url.PathEscape(id), nil)
}

// PostSearchVolumeTask posts a single task covering all keywords.
func (c *Client) PostSearchVolumeTask(ctx context.Context, keywords []string, target Target) (*Response, error) {
	payload := []map[string]interface{}{{
		"keywords":      keywords,
		"location_code": target.LocationCode,
		"language_code": target.LanguageCode,
	}}
	return c.do(ctx, "post search volume task", fasthttp.MethodPost, volumeTaskPostPath, payload)
}

func (c *Client) GetSearchVolumeTask(ctx context.Context, id string) (*Response, error) {
	return c.do(ctx, "get search volume task", fasthttp.MethodGet, volumeTaskGetPath+url.PathEscape(id), nil)
}

func (c *Client) KeywordDifficulty(ctx context.Context, keywords []string, target Target) (*Response, error) {
	return c.do(ctx, "keyword difficulty", fasthttp.MethodPost, difficultyLivePath, labsPayload(keywords, target))
}

func (c *Client) SearchIntent(ctx context.Context, keywords []string, target Target) (*Response, error) {
	return c.do(ctx, "search intent", fasthttp.MethodPost, searchIntentLivePath, labsPayload(keywords, target))
}

func labsPayload(keywords []string, target Target) []map[string]interface{} {
	return []map[string]interface{}{{
		"keywords":      keywords,
		"location_code": target.LocationCode,
		"language_code": target.LanguageCode,
	}}
}

// Stats returns request counters.
func (c *Client) Stats() map[string]uint64 {
	return map[string]uint64{
		"total_requests":  atomic.LoadUint64(&c.totalRequests),
		"failed_requests": atomic.LoadUint64(&c.failedRequests),
		"circuit_state":   uint64(c.breaker.State()),
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("%s: failed to encode payload: %w", op, err)
		}
	}

	start := time.Now()
	var result *Response
	err := c.retry.Execute(ctx, func() error {
		if err := c.breaker.Allow(); err != nil {
			return err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			c.breaker.Release()
			return err
		}
		atomic.AddUint64(&c.totalRequests, 1)
		resp, err := c.roundTrip(ctx, op, method, path, body)
		c.breaker.Record(err)
		if err != nil {
			c.log.SafeDebug("DataForSEO request attempt failed", map[string]interface{}{
				"op":    op,
				"url":   c.baseURL + path,
				"error": err.Error(),
			})
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		atomic.AddUint64(&c.failedRequests, 1)
		c.log.SafeError("DataForSEO request failed", err, map[string]interface{}{"op": op})
		return nil, err
	}

	c.log.Logger.WithFields(map[string]interface{}{
		"op":          op,
		"duration_ms": time.Since(start).Milliseconds(),
		"cost":        result.Cost,
	}).Debug("DataForSEO request completed")
	return result, nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body []byte) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", c.authValue)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, &Error{Op: op, HTTPStatus: status, Message: truncate(string(resp.Body()), 256)}
	}

	raw := append([]byte(nil), resp.Body()...)
	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if env.StatusCode != StatusOK {
		return nil, &Error{Op: op, StatusCode: env.StatusCode, Message: env.StatusMessage}
	}
	return &Response{Envelope: *env, Raw: raw}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
