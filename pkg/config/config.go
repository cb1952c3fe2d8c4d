package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	AI          AIConfig
	Marketplace MarketplaceConfig
	Agents      AgentsConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	HTTPPort    int           `mapstructure:"http_port"`
	MetricsPort int           `mapstructure:"metrics_port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addresses        []string      `mapstructure:"addresses"`
	Password         string        `mapstructure:"password"`
	DB               int           `mapstructure:"db"`
	PoolSize         int           `mapstructure:"pool_size"`
	ClusterMode      bool          `mapstructure:"cluster_mode"`
	ActivityCacheTTL time.Duration `mapstructure:"activity_cache_ttl"`
}

type AIConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MarketplaceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AgentsConfig struct {
	// SourcerMatch selects how vendors are paired with activities:
	// "nearest" (great-circle distance) or "exact" (coordinate match).
	SourcerMatch      string        `mapstructure:"sourcer_match"`
	SourcerInterval   time.Duration `mapstructure:"sourcer_interval"`
	ProcessorInterval time.Duration `mapstructure:"processor_interval"`
	PublisherInterval time.Duration `mapstructure:"publisher_interval"`
	ErrorBackoff      time.Duration `mapstructure:"error_backoff"`
	SuggestionAPIURL  string        `mapstructure:"suggestion_api_url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/dealsense/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("DEALSENSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Credentials and endpoints have no defaults, and Unmarshal only sees
	// keys viper already knows about; bind them so DEALSENSE_DATABASE_HOST
	// and friends work in an env-only deployment.
	for _, key := range []string{
		"database.host",
		"database.user",
		"database.password",
		"database.database",
		"ai.api_key",
		"redis.addresses",
		"redis.password",
		"agents.suggestion_api_url",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("server.http_port", 8008)
	viper.SetDefault("server.metrics_port", 9091)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("redis.activity_cache_ttl", "90s")
	viper.SetDefault("ai.model", "gemini-1.5-flash-latest")
	viper.SetDefault("ai.endpoint", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("ai.timeout", "30s")
	viper.SetDefault("marketplace.base_url", "https://api.upswap.app/api")
	viper.SetDefault("marketplace.timeout", "10s")
	viper.SetDefault("agents.sourcer_match", "nearest")
	viper.SetDefault("agents.sourcer_interval", "2m")
	viper.SetDefault("agents.processor_interval", "2m")
	viper.SetDefault("agents.publisher_interval", "5m")
	viper.SetDefault("agents.error_backoff", "60s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Validate reports fatal configuration errors so binaries can refuse to start
// instead of crash-looping against unreachable collaborators.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" || c.User == "" || c.Database == "" {
		return errors.New("database host, user and database must be configured")
	}
	return nil
}

func (c *AIConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("ai api key is not configured")
	}
	if c.Model == "" {
		return errors.New("ai model name is not configured")
	}
	return nil
}
