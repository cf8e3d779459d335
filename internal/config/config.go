package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Titles  TitlesConfig  `mapstructure:"titles"`
	Query   QueryConfig   `mapstructure:"query"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig defines the thin API and metrics listeners
type ServerConfig struct {
	BindAddress string `mapstructure:"bind_address"`
	APIPort     int    `mapstructure:"api_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "sqlite", "bolt" or "redis"
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// IngestConfig defines where exports are read from and how they are loaded
type IngestConfig struct {
	ExportDir  string `mapstructure:"export_dir"`
	FilePrefix string `mapstructure:"file_prefix"`
	BatchSize  int    `mapstructure:"batch_size"`
	OnStartup  bool   `mapstructure:"on_startup"`
}

// TitlesConfig defines the application title mapping
type TitlesConfig struct {
	Source          string `mapstructure:"source"` // empty = built-in mapping
	AppToTitlePath  string `mapstructure:"app_to_title_path"`
	TitleToAppsPath string `mapstructure:"title_to_apps_path"`
	UnmappedPolicy  string `mapstructure:"unmapped_policy"` // "raw" or "unknown"
}

// QueryConfig defines aggregation defaults
type QueryConfig struct {
	MinDurationHours float64 `mapstructure:"min_duration_hours"`
	CacheSize        int     `mapstructure:"cache_size"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("AWTALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_address", "0.0.0.0")
	v.SetDefault("server.api_port", 8000)
	v.SetDefault("server.metrics_port", 9090)

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "data/awtally.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")
	v.SetDefault("storage.redis.key_prefix", "awtally")

	// Ingest defaults
	v.SetDefault("ingest.export_dir", "data/export")
	v.SetDefault("ingest.file_prefix", "aw-buckets-export")
	v.SetDefault("ingest.batch_size", 500)
	v.SetDefault("ingest.on_startup", true)

	// Title mapping defaults
	v.SetDefault("titles.source", "")
	v.SetDefault("titles.app_to_title_path", "data/app_to_title.json")
	v.SetDefault("titles.title_to_apps_path", "data/title_to_apps.json")
	v.SetDefault("titles.unmapped_policy", "raw")

	// Query defaults
	v.SetDefault("query.min_duration_hours", 10.0)
	v.SetDefault("query.cache_size", 128)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// ValidKeys returns the set of all recognised configuration keys
func ValidKeys() map[string]bool {
	v := viper.New()
	SetDefaults(v)

	keys := make(map[string]bool)
	for _, key := range v.AllKeys() {
		keys[key] = true
	}
	return keys
}

func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	// SetConfigFile reports a missing explicit path as an fs error
	return errors.Is(err, fs.ErrNotExist)
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.APIPort <= 0 || cfg.Server.APIPort > 65535 {
		return fmt.Errorf("invalid API port: %d", cfg.Server.APIPort)
	}
	if cfg.Server.MetricsPort <= 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	switch cfg.Storage.Type {
	case "":
		cfg.Storage.Type = "sqlite"
	case "sqlite", "bolt", "redis":
	default:
		return fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
	if cfg.Storage.Type != "redis" && cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if cfg.Ingest.BatchSize <= 0 {
		return fmt.Errorf("invalid ingest batch size: %d", cfg.Ingest.BatchSize)
	}

	switch cfg.Titles.UnmappedPolicy {
	case "":
		cfg.Titles.UnmappedPolicy = "raw"
	case "raw", "unknown":
	default:
		return fmt.Errorf("unknown unmapped_policy: %s (must be raw or unknown)", cfg.Titles.UnmappedPolicy)
	}

	if cfg.Query.MinDurationHours < 0 {
		return fmt.Errorf("min_duration_hours must not be negative")
	}
	if cfg.Query.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}

	return nil
}
