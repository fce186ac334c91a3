package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tential/gqlbody/graphiql"
)

// GraphiQLConfig holds the explorer settings
type GraphiQLConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	DefaultQuery         string `mapstructure:"default_query"`
	HeaderEditorEnabled  bool   `mapstructure:"header_editor_enabled"`
	ShouldPersistHeaders bool   `mapstructure:"should_persist_headers"`
	SubscriptionEndpoint string `mapstructure:"subscription_endpoint"`
	WebsocketClient      string `mapstructure:"websocket_client"` // "v0" (subscriptions-transport-ws) or "v1" (graphql-ws)
}

// Options converts the config into renderer options
func (g GraphiQLConfig) Options() *graphiql.Options {
	return &graphiql.Options{
		DefaultQuery:         g.DefaultQuery,
		HeaderEditorEnabled:  g.HeaderEditorEnabled,
		ShouldPersistHeaders: g.ShouldPersistHeaders,
		SubscriptionEndpoint: g.SubscriptionEndpoint,
		WebsocketClient:      g.WebsocketClient,
	}
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`      // Enable/disable monitoring
	BindAddress string `mapstructure:"bind_address"` // Address to bind monitoring server (default: :9090)
	MetricsPath string `mapstructure:"metrics_path"` // Path for metrics endpoint (default: /metrics)
}

// Config holds the application configuration
type Config struct {
	BindAddress       string `mapstructure:"bind_address"`
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"` // "text" (default) or "json"
	LogHealthRequests bool   `mapstructure:"log_health_requests"`
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout"` // Graceful shutdown timeout in seconds

	GraphQLPath  string `mapstructure:"graphql_path"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`

	GraphiQL   GraphiQLConfig   `mapstructure:"graphiql"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// InitConfig initializes the configuration system
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gqlbody")
	}

	viper.SetEnvPrefix("GQLBODY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// Load loads the configuration from the global viper instance
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads the configuration from v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("bind_address", "0.0.0.0:4000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_health_requests", false)
	v.SetDefault("shutdown_timeout", 10)

	v.SetDefault("graphql_path", "/graphql")
	v.SetDefault("max_body_bytes", 100_000_000)

	v.SetDefault("graphiql.enabled", true)
	v.SetDefault("graphiql.default_query", "")
	v.SetDefault("graphiql.header_editor_enabled", false)
	v.SetDefault("graphiql.should_persist_headers", false)
	v.SetDefault("graphiql.subscription_endpoint", "")
	v.SetDefault("graphiql.websocket_client", graphiql.WebsocketClientV0)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("monitoring.enabled", false)
	v.SetDefault("monitoring.bind_address", ":9090")
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// NewViper returns a viper instance carrying only the defaults
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.BindAddress == "" {
		return fmt.Errorf("bind_address is required")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if !strings.HasPrefix(cfg.GraphQLPath, "/") {
		return fmt.Errorf("graphql_path must start with '/', got %q", cfg.GraphQLPath)
	}

	if cfg.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", cfg.MaxBodyBytes)
	}

	if cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative, got %d", cfg.ShutdownTimeout)
	}

	switch cfg.GraphiQL.WebsocketClient {
	case graphiql.WebsocketClientV0, graphiql.WebsocketClientV1:
	default:
		return fmt.Errorf("invalid graphiql.websocket_client %q: must be '%s' or '%s'",
			cfg.GraphiQL.WebsocketClient, graphiql.WebsocketClientV0, graphiql.WebsocketClientV1)
	}

	if cfg.Monitoring.Enabled && cfg.Monitoring.BindAddress == "" {
		return fmt.Errorf("monitoring.bind_address is required when monitoring is enabled")
	}

	return nil
}
