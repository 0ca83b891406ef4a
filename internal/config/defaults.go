package config

import (
	"github.com/spf13/viper"
)

// setDefaults registers every key so that environment variables are seen
// by Unmarshal even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("api.login", "")
	v.SetDefault("api.password", "")
	v.SetDefault("api.sandbox", true)
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", "60s")
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.retry_delay", "2s")
	v.SetDefault("api.requests_per_second", 2.0)
	v.SetDefault("api.circuit_max_failures", 5)
	v.SetDefault("api.circuit_reset_timeout", "30s")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "data/seo_app_cache.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.memory_cache_size", 1000)
	v.SetDefault("storage.memory_ttl", "30m")
	v.SetDefault("storage.key_templates", map[string]string{})

	v.SetDefault("target.location_code", 2840)
	v.SetDefault("target.language_code", "en")
	v.SetDefault("target.device", "desktop")

	v.SetDefault("clustering.algorithm", "balanced_strict")
	v.SetDefault("clustering.tie_break", "volume")
	v.SetDefault("clustering.min_intersections", 3)
	v.SetDefault("clustering.urls_to_check", 10)

	v.SetDefault("fetch.serp_batch_size", 100)
	v.SetDefault("fetch.serp_poll_interval", "15s")
	v.SetDefault("fetch.serp_timeout", "5m")
	v.SetDefault("fetch.volume_poll_interval", "10s")
	v.SetDefault("fetch.volume_timeout", "3m")
	v.SetDefault("fetch.concurrency", 5)
	v.SetDefault("fetch.cache_max_age_days", -1)

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.time_format", "")
}
