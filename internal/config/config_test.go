package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
api:
  base_url: "https://blog.example.com"
  timeout: "3s"
session:
  token: "tok"
  cookie_name: "sid"
article:
  id: "42"
ui:
  notice_ttl: "2s"
log:
  file: "/tmp/comments.log"
metrics:
  host: "0.0.0.0"
  port: "9090"
stub:
  port: "8081"
  jwt_secret: "s3cret"
  token_ttl: "1h"
  seed: false
`

const brokenYAML = `
env: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	cfg, err := Load(writeFile(t, t.TempDir(), "config.yaml", sampleYAML))
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://blog.example.com", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "tok", cfg.Session.Token)
	require.Equal(t, "sid", cfg.Session.CookieName)
	require.Equal(t, "42", cfg.Article.ID)
	require.Equal(t, 2*time.Second, cfg.UI.NoticeTTL)
	require.Equal(t, "/tmp/comments.log", cfg.Log.File)
	require.True(t, cfg.Metrics.Enabled())
	require.Equal(t, "0.0.0.0:9090", cfg.Metrics.Addr())
	require.Equal(t, "127.0.0.1:8081", cfg.Stub.Addr())
	require.False(t, cfg.Stub.Seed)
	require.Equal(t, time.Hour, cfg.Stub.TokenTTL)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_BrokenYAML(t *testing.T) {
	_, err := Load(writeFile(t, t.TempDir(), "bad.yaml", brokenYAML))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	p := writeFile(t, t.TempDir(), "env.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", p)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "42", cfg.Article.ID)
}

func TestLoad_LocalYAMLAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "env: \"dev\"\narticle:\n  id: \"5\"\n")
	chdir(t, dir)

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ARTICLE_ID", "77")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "77", cfg.Article.ID, "env overrides the file")
	require.Equal(t, "session", cfg.Session.CookieName)
	require.Equal(t, 6*time.Second, cfg.UI.NoticeTTL)
	require.False(t, cfg.Metrics.Enabled())
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "http://127.0.0.1:50095", cfg.API.BaseURL)
	require.Equal(t, "127.0.0.1:50095", cfg.Stub.Addr())
	require.True(t, cfg.Stub.Seed)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env:     "local",
			API:     APIConfig{BaseURL: "http://localhost:1", Timeout: time.Second},
			Session: SessionConfig{CookieName: "session"},
			Article: ArticleConfig{ID: "1"},
			Stub:    StubConfig{JWTSecret: "x", TokenTTL: time.Hour},
		}
	}

	ok := base()
	require.NoError(t, ok.validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"env", func(c *Config) { c.Env = "stage" }, "env"},
		{"base url", func(c *Config) { c.API.BaseURL = "localhost" }, "api.base_url"},
		{"ftp", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"article", func(c *Config) { c.Article.ID = "" }, "article.id"},
		{"cookie", func(c *Config) { c.Session.CookieName = "" }, "session.cookie_name"},
		{"ttl", func(c *Config) { c.UI.NoticeTTL = -time.Second }, "ui.notice_ttl"},
		{"secret", func(c *Config) { c.Stub.JWTSecret = "" }, "stub.jwt_secret"},
		{"token ttl", func(c *Config) { c.Stub.TokenTTL = time.Second }, "stub.token_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

func TestMetricsConfig_Disabled(t *testing.T) {
	t.Parallel()
	require.False(t, MetricsConfig{Host: "127.0.0.1"}.Enabled())
}
