package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"seo-cluster/pkg/cluster"
	"seo-cluster/pkg/storage"
)

const envPrefix = "SEOCLUSTER"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
	path   string
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Load reads .env, the optional config file and SEOCLUSTER_* variables.
// An empty configPath searches ./config.yaml and ./config/config.yaml; not
// finding one is fine, defaults apply.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	m.path = configPath
	m.setupViper(configPath)

	if err := m.read(); err != nil {
		return nil, err
	}

	config, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.config = config
	return config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}

	if err := m.read(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	config, err := m.decode()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) setupViper(configPath string) {
	if configPath != "" {
		m.viper.SetConfigFile(configPath)
	} else {
		m.viper.SetConfigName("config")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("./config")
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
	// the provider's own variable names work too
	_ = m.viper.BindEnv("api.login", envPrefix+"_API_LOGIN", "DATAFORSEO_LOGIN")
	_ = m.viper.BindEnv("api.password", envPrefix+"_API_PASSWORD", "DATAFORSEO_PASSWORD")

	setDefaults(m.viper)
}

func (m *manager) read() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if m.path == "" && errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config: %w", err)
}

func (m *manager) decode() (*Config, error) {
	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks ranges and enumerations. API credentials are not
// required here; commands that call the API check them.
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", ErrInvalid, config.Server.Port)
	}

	if _, err := cluster.ParseAlgorithm(config.Clustering.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := cluster.ParseTieBreak(config.Clustering.TieBreak); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := ValidateClusterParams(config.Clustering.MinIntersections, config.Clustering.URLsToCheck); err != nil {
		return err
	}

	switch strings.ToLower(config.Storage.Driver) {
	case storage.DriverSQLite, storage.DriverMemory:
	case storage.DriverPostgres:
		if config.Storage.DSN == "" {
			return fmt.Errorf("%w: storage.dsn is required for postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalid, config.Storage.Driver)
	}
	if config.Storage.MemoryCacheSize < 0 {
		return fmt.Errorf("%w: storage.memory_cache_size must not be negative", ErrInvalid)
	}
	if _, err := config.KeyBuilder(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := ValidateDevice(config.Target.Device); err != nil {
		return err
	}
	if config.Target.LocationCode <= 0 {
		return fmt.Errorf("%w: target.location_code must be positive", ErrInvalid)
	}
	if config.Target.LanguageCode == "" {
		return fmt.Errorf("%w: target.language_code cannot be empty", ErrInvalid)
	}

	if config.API.MaxRetries < 0 {
		return fmt.Errorf("%w: api.max_retries must not be negative", ErrInvalid)
	}
	if config.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalid)
	}
	if config.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: api.requests_per_second must be positive", ErrInvalid)
	}

	f := config.Fetch
	if f.SERPBatchSize <= 0 || f.SERPBatchSize > 100 {
		return fmt.Errorf("%w: fetch.serp_batch_size must be between 1 and 100", ErrInvalid)
	}
	if f.SERPPollInterval <= 0 || f.SERPTimeout <= 0 || f.VolumePollInterval <= 0 || f.VolumeTimeout <= 0 {
		return fmt.Errorf("%w: fetch intervals and timeouts must be positive", ErrInvalid)
	}
	if f.Concurrency <= 0 {
		return fmt.Errorf("%w: fetch.concurrency must be positive", ErrInvalid)
	}
	if f.CacheMaxAgeDays < -1 {
		return fmt.Errorf("%w: fetch.cache_max_age_days must be -1 or more", ErrInvalid)
	}

	return nil
}

// ValidateClusterParams checks the ranges accepted for a clustering run.
func ValidateClusterParams(minIntersections, urlsToCheck int) error {
	if minIntersections < 2 || minIntersections > 10 {
		return fmt.Errorf("%w: min_intersections must be between 2 and 10, got %d", ErrInvalid, minIntersections)
	}
	if urlsToCheck < 5 || urlsToCheck > 20 {
		return fmt.Errorf("%w: urls_to_check must be between 5 and 20, got %d", ErrInvalid, urlsToCheck)
	}
	return nil
}

func ValidateDevice(device string) error {
	switch device {
	case "desktop", "mobile":
		return nil
	default:
		return fmt.Errorf("%w: unknown device %q", ErrInvalid, device)
	}
}
