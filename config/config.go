package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration, loaded from environment
// variables (optionally via a .env file).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Auth      AuthConfig
	Server    ServerConfig
	Adapters  AdapterConfig
	Baseline  BaselineConfig
	Collector CollectorConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"tradersecho"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"sentiment"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret     string        `envconfig:"JWT_SECRET" default:"change-me"`
	TokenDuration time.Duration `envconfig:"JWT_TOKEN_DURATION" default:"24h"`
	AdminToken    string        `envconfig:"ADMIN_TOKEN" default:"change-admin-token"`
}

type ServerConfig struct {
	Port        int      `envconfig:"SERVER_PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://127.0.0.1:5173,http://localhost:5173"`
}

type AdapterConfig struct {
	// Comma-separated adapter names to enable: stocktwits, reddit, simulator.
	Enabled []string `envconfig:"ADAPTERS" default:"stocktwits"`
	Tickers []string `envconfig:"ADAPTER_TICKERS" default:"AAPL,MSFT,TSLA,NVDA,AMZN"`

	StockTwitsRatePerMin int `envconfig:"STOCKTWITS_RATE_PER_MIN" default:"60"`

	RedditUserAgent string `envconfig:"REDDIT_USER_AGENT" default:"Tradersecho/1.0 by example"`
}

type BaselineConfig struct {
	WindowDays  int     `envconfig:"BASELINE_WINDOW_DAYS" default:"30"`
	DefaultMean float64 `envconfig:"BASELINE_DEFAULT_MEAN" default:"0"`
	DefaultStd  float64 `envconfig:"BASELINE_DEFAULT_STD" default:"1"`
}

type CollectorConfig struct {
	Interval        time.Duration `envconfig:"COLLECT_INTERVAL" default:"2m"`
	RollupInterval  time.Duration `envconfig:"ROLLUP_INTERVAL" default:"5m"`
	BaselineAt      string        `envconfig:"BASELINE_SCHEDULE" default:"0 1 * * *"`
	SnapshotSeconds int           `envconfig:"SNAPSHOT_PUSH_SECONDS" default:"3"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	for i, t := range cfg.Adapters.Tickers {
		cfg.Adapters.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	return &cfg, nil
}
