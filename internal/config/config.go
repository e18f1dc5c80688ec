package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingDSN is returned when no record store connection string is configured.
var ErrMissingDSN = errors.New("POSTGRES_DSN is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Inventory InventoryConfig
	Tickets   TicketConfig
	Events    EventsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowedOrigins    string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN                   string
	MaxConns              int32
	MinConns              int32
	RunMigrations         bool
	ConnMaxIdleSec        int32
	ConnMaxLifeSec        int32
	ConnectTimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RabbitMQConfig configures the optional event exchange. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token verification parameters.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// InventoryConfig tunes asset and catalog behavior.
type InventoryConfig struct {
	RequireSpecification bool
	SpecCacheTTLSeconds  int
}

// TicketConfig selects the ticket transition policy.
type TicketConfig struct {
	TransitionPolicy string
}

// EventsConfig names the pub/sub channels used for domain events.
type EventsConfig struct {
	ChannelPrefix string
}

// Load reads configuration from .env, an optional config.yaml in the working
// directory and environment variables, applying defaults where possible.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for config.yaml.
func LoadFrom(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  v.GetString("app_name"),
			Env:                   v.GetString("app_env"),
			Host:                  v.GetString("app_host"),
			Port:                  v.GetString("app_port"),
			Version:               v.GetString("app_version"),
			RequestTimeoutSeconds: v.GetInt("http_request_timeout_seconds"),
			CORSAllowedOrigins:    v.GetString("cors_allowed_origins"),
		},
		Postgres: PostgresConfig{
			DSN:                   strings.TrimSpace(v.GetString("postgres_dsn")),
			MaxConns:              v.GetInt32("postgres_max_conns"),
			MinConns:              v.GetInt32("postgres_min_conns"),
			RunMigrations:         v.GetBool("postgres_run_migrations"),
			ConnMaxIdleSec:        v.GetInt32("postgres_conn_max_idle_seconds"),
			ConnMaxLifeSec:        v.GetInt32("postgres_conn_max_life_seconds"),
			ConnectTimeoutSeconds: v.GetInt("postgres_connect_timeout_seconds"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq_url"),
			Exchange: v.GetString("rabbitmq_exchange"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("log_level"),
		},
		Auth: AuthConfig{
			JWTSecret:       v.GetString("auth_jwt_secret"),
			TokenTTLMinutes: v.GetInt("auth_token_ttl_minutes"),
		},
		Inventory: InventoryConfig{
			RequireSpecification: v.GetBool("assets_require_specification"),
			SpecCacheTTLSeconds:  v.GetInt("spec_cache_ttl_seconds"),
		},
		Tickets: TicketConfig{
			TransitionPolicy: strings.ToLower(v.GetString("ticket_transition_policy")),
		},
		Events: EventsConfig{
			ChannelPrefix: v.GetString("events_channel_prefix"),
		},
	}

	if cfg.Postgres.DSN == "" {
		return nil, ErrMissingDSN
	}
	if cfg.App.Port == "" {
		return nil, errors.New("APP_PORT is required")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "asset-desk")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_version", "dev")
	v.SetDefault("http_request_timeout_seconds", 30)
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")

	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_max_conns", 10)
	v.SetDefault("postgres_min_conns", 2)
	v.SetDefault("postgres_run_migrations", true)
	v.SetDefault("postgres_conn_max_idle_seconds", 30)
	v.SetDefault("postgres_conn_max_life_seconds", 300)
	v.SetDefault("postgres_connect_timeout_seconds", 5)

	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("rabbitmq_exchange", "inventory.events")

	v.SetDefault("log_level", "info")
	v.SetDefault("auth_jwt_secret", "dev-secret")
	v.SetDefault("auth_token_ttl_minutes", 60)

	v.SetDefault("assets_require_specification", false)
	v.SetDefault("spec_cache_ttl_seconds", 300)
	v.SetDefault("ticket_transition_policy", "permissive")
	v.SetDefault("events_channel_prefix", "asset-desk.events")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectTimeout bounds how long startup waits for the record store.
func (p PostgresConfig) ConnectTimeout() time.Duration {
	if p.ConnectTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.ConnectTimeoutSeconds) * time.Second
}

// SpecCacheTTL returns how long catalog entries stay cached.
func (i InventoryConfig) SpecCacheTTL() time.Duration {
	if i.SpecCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(i.SpecCacheTTLSeconds) * time.Second
}
