package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SERVER_ADDR", "AI_DELAY", "REDIS_URL", "REDIS_PASSWORD", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewUsesDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := New(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, 420*time.Millisecond, cfg.Game.AIDelay)
}

func TestNewReadsFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9090"
game:
  ai_delay: 1s
session:
  ttl: 5m
redis:
  addr: "localhost:6379"
  db: 2
log:
  level: debug
`)
	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Game.AIDelay)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, defaultSweepPeriod, cfg.Session.SweepPeriod)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, defaultKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("AI_DELAY", "100ms")
	t.Setenv("REDIS_URL", "redis:6379")
	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Game.AIDelay)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "negative delay", body: "game:\n  ai_delay: -1s\n", want: ErrNegativeAIDelay},
		{name: "zero ttl", body: "session:\n  ttl: 0s\n", want: ErrInvalidSessionTTL},
		{name: "zero sweep period", body: "session:\n  sweep_period: 0s\n", want: ErrInvalidSweepPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := New(writeConfig(t, tt.body))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewRejectsMalformedInput(t *testing.T) {
	clearEnv(t)
	_, err := New(writeConfig(t, "game: [1, 2"))
	assert.Error(t, err)

	t.Setenv("AI_DELAY", "soon")
	_, err = New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestRedisURLEnv(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{name: "host and port", url: "cache:6379", addr: "cache:6379"},
		{name: "url", url: "redis://:secret@cache:6380/3", addr: "cache:6380", password: "secret", db: 3},
		{name: "url without credentials", url: "redis://cache:6379", addr: "cache:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REDIS_URL", tt.url)
			cfg, err := New(filepath.Join(t.TempDir(), "missing.yml"))
			require.NoError(t, err)
			assert.Equal(t, tt.addr, cfg.Redis.Addr)
			assert.Equal(t, tt.password, cfg.Redis.Password)
			assert.Equal(t, tt.db, cfg.Redis.DB)
		})
	}
}

func TestRedisURLEnvRejectsBadURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "http://cache:6379")
	_, err := New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
