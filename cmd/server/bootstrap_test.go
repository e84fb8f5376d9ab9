package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodlinkhq/foodlink/internal/app"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		Server:   app.ServerConfig{Mode: "test"},
		Database: app.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "foodlink"},
		},
		Storage: app.StorageConfig{
			Root:    t.TempDir(),
			Buckets: []string{"food-photos"},
		},
		Location:    app.LocationConfig{Strategy: "curated"},
		Maintenance: app.MaintenanceConfig{Enabled: true, SessionSchedule: "@hourly"},
		RateLimit:   app.RateLimitConfig{Enabled: true, RPS: 100, Burst: 100},
	}
}

func TestBootstrapRuntime(t *testing.T) {
	stack, err := bootstrapRuntime(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, stack.Router)
	require.NotNil(t, stack.Cleaner)

	w := httptest.NewRecorder()
	stack.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, stack.Shutdown(context.Background()))
}

func TestBootstrapRuntimeRejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Location.Strategy = "geocoder"

	_, err := bootstrapRuntime(cfg, zap.NewNop())
	require.ErrorContains(t, err, "unknown classifier strategy")
}

func TestLoadApplicationConfig(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "does not exist")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600))
	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FOODLINK_TEST_ENV_FILE=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FOODLINK_TEST_ENV_FILE") })

	require.NoError(t, loadEnvFile(path))
	require.Equal(t, "loaded", os.Getenv("FOODLINK_TEST_ENV_FILE"))

	require.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}
