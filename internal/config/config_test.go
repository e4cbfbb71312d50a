package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/auditcase/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 50, cfg.Generation.MaxAttempts)
	assert.Equal(t, 2000, cfg.Generation.OperationCap)
	assert.Equal(t, 12, cfg.Generation.ShuffleThreshold)
	assert.Equal(t, 6, cfg.Generation.SubsetAttempts)
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/auditcase?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	type testCase struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg *config.Config)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Generation",
			env: map[string]string{
				"GEN_MAX_ATTEMPTS":            "10",
				"GEN_ALLOCATOR_OPERATION_CAP": "500",
				"GEN_CATALOG_PATH":            "/etc/auditcase/vendors.csv",
			},
			check: func(t *testing.T, cfg *config.Config) {
				e := cfg.Engine()
				assert.Equal(t, 10, e.MaxAttempts)
				assert.Equal(t, 500, e.OperationCap)
				assert.Equal(t, "/etc/auditcase/vendors.csv", cfg.Generation.CatalogPath)
			},
		},
		{
			name: "Render",
			env: map[string]string{
				"RENDER_BASE_URL":        "https://render.internal",
				"RENDER_TOKEN":           "abc",
				"RENDER_RATE_PER_SECOND": "2.5",
			},
			check: func(t *testing.T, cfg *config.Config) {
				o := cfg.RenderOptions()
				assert.Equal(t, "https://render.internal", o.BaseURL)
				assert.Equal(t, "abc", o.Token)
				assert.InDelta(t, 2.5, o.RatePerSecond, 1e-9)
			},
		},
		{
			name: "Origins",
			env:  map[string]string{"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
			},
		},
		{
			name:    "NonPositiveAttempts",
			env:     map[string]string{"GEN_MAX_ATTEMPTS": "0"},
			wantErr: true,
		},
		{
			name:    "Malformed",
			env:     map[string]string{"PORT": "eighty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, config.Level("debug"))
	assert.Equal(t, slog.LevelWarn, config.Level("WARN"))
	assert.Equal(t, slog.LevelInfo, config.Level("verbose"))
}
