// config — загрузка конфигурации клиента комментариев и стаба бэкенда.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Article ArticleConfig `yaml:"article"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Stub    StubConfig    `yaml:"stub"`
}

// APIConfig — REST-бэкенд комментариев.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://127.0.0.1:50095"`
	Timeout time.Duration `yaml:"timeout"  env:"API_TIMEOUT"  env-default:"10s"`
}

// SessionConfig — токен сессии зрителя (пустой — аноним).
type SessionConfig struct {
	Token      string `yaml:"token"       env:"SESSION_TOKEN"`
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE" env-default:"session"`
}

// ArticleConfig — статья, комментарии которой показываются.
type ArticleConfig struct {
	ID string `yaml:"id" env:"ARTICLE_ID" env-default:"1"`
}

// UIConfig — параметры интерфейса.
type UIConfig struct {
	NoticeTTL time.Duration `yaml:"notice_ttl" env:"UI_NOTICE_TTL" env-default:"6s"`
}

// LogConfig — куда писать лог. TUI занимает терминал, поэтому по умолчанию файл.
type LogConfig struct {
	File string `yaml:"file" env:"LOG_FILE" env-default:"comments.log"`
}

// MetricsConfig — отдельный HTTP для Prometheus (пустой Port — выключен).
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"METRICS_PORT"`
}

func (m MetricsConfig) Enabled() bool { return m.Port != "" }
func (m MetricsConfig) Addr() string  { return net.JoinHostPort(m.Host, m.Port) }

// StubConfig — локальный стаб бэкенда.
type StubConfig struct {
	Host      string        `yaml:"host"       env:"STUB_HOST"       env-default:"127.0.0.1"`
	Port      string        `yaml:"port"       env:"STUB_PORT"       env-default:"50095"`
	JWTSecret string        `yaml:"jwt_secret" env:"STUB_JWT_SECRET" env-default:"dev-secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"STUB_TOKEN_TTL"  env-default:"24h"`
	Timeout   time.Duration `yaml:"timeout"    env:"STUB_TIMEOUT"    env-default:"5s"`
	Seed      bool          `yaml:"seed"       env:"STUB_SEED"       env-default:"true"`
}

func (s StubConfig) Addr() string { return net.JoinHostPort(s.Host, s.Port) }

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.validate(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("env must be one of local, dev, prod")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url must be an absolute http(s) url")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0")
	}

	if c.Article.ID == "" {
		return fmt.Errorf("article.id is required")
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}

	if c.UI.NoticeTTL < 0 {
		return fmt.Errorf("ui.notice_ttl must be >= 0")
	}

	if c.Stub.JWTSecret == "" {
		return fmt.Errorf("stub.jwt_secret is required")
	}

	if c.Stub.TokenTTL < time.Minute {
		return fmt.Errorf("stub.token_ttl must be at least 1m")
	}

	return nil
}
