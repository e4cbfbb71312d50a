package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/auditcase/internal/database"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/render"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Auditcase"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"auditcase"`
		MaxOpen  int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
		MaxIdle  int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Generation struct {
		MaxAttempts      int    `envconfig:"GEN_MAX_ATTEMPTS" default:"50"`
		SubsetAttempts   int    `envconfig:"GEN_SUBSET_ATTEMPTS" default:"6"`
		OperationCap     int    `envconfig:"GEN_ALLOCATOR_OPERATION_CAP" default:"2000"`
		ShuffleThreshold int    `envconfig:"GEN_ALLOCATOR_SHUFFLE_THRESHOLD" default:"12"`
		CatalogPath      string `envconfig:"GEN_CATALOG_PATH"`
	}

	Render struct {
		BaseURL       string        `envconfig:"RENDER_BASE_URL"`
		Token         string        `envconfig:"RENDER_TOKEN"`
		RatePerSecond float64       `envconfig:"RENDER_RATE_PER_SECOND" default:"5"`
		Timeout       time.Duration `envconfig:"RENDER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) Pool() database.Pool {
	return database.Pool{MaxOpen: c.DB.MaxOpen, MaxIdle: c.DB.MaxIdle}
}

func (c *Config) Engine() engine.Config {
	return engine.Config{
		MaxAttempts:      c.Generation.MaxAttempts,
		SubsetAttempts:   c.Generation.SubsetAttempts,
		OperationCap:     c.Generation.OperationCap,
		ShuffleThreshold: c.Generation.ShuffleThreshold,
	}
}

func (c *Config) RenderOptions() render.Options {
	return render.Options{
		BaseURL:       c.Render.BaseURL,
		Token:         c.Render.Token,
		RatePerSecond: c.Render.RatePerSecond,
		Timeout:       c.Render.Timeout,
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Generation.MaxAttempts <= 0 {
		return nil, fmt.Errorf("GEN_MAX_ATTEMPTS must be positive, got %d", cfg.Generation.MaxAttempts)
	}

	return &cfg, nil
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func Level(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}

	return l
}
