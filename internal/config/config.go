package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Auth strategies for the web login page.
const (
	StrategyPassword = "password"
	StrategyRedirect = "redirect"
)

type Config struct {
	HTTP struct {
		Addr      string
		PublicURL string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Auth struct {
		Strategy  string
		JWTSecret string
		TokenTTL  time.Duration
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
		LogoutURL    string
	}
	Session struct {
		Lifetime       time.Duration
		Store          string
		ResolveTimeout time.Duration
	}
	API struct {
		// BaseURL points the web frontend at a remote REST API. Empty means
		// the API served by this process is called in-process.
		BaseURL string
	}
	Redis struct {
		URL string
	}
	Cache struct {
		Prefix string
		TTL    time.Duration
	}
	Uploads struct {
		Dir      string
		BaseURL  string
		MaxBytes int64
		MaxWidth int
	}
	LLM struct {
		Provider   string
		Model      string
		APIKey     string
		BaseURL    string
		Prompt     string
		ImageModel string
	}
	Login struct {
		Rate  float64
		Burst int
	}
	OTel struct {
		Endpoint string
		Insecure bool
	}
	Log struct {
		Level  string
		Format string
	}
	InsecureCookies bool
}

// OIDCEnabled reports whether an identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != "" && c.OIDC.ClientID != ""
}

// Load reads config from environment (FOXX_ prefix) and optional foxxtalk.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FOXX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("foxxtalk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.public_url", "http://localhost:8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "file:foxxtalk.db")
	v.SetDefault("auth.strategy", StrategyPassword)
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("session.store", "db")
	v.SetDefault("session.resolve_timeout", "2s")
	v.SetDefault("cache.prefix", "foxxtalk:")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.base_url", "/uploads")
	v.SetDefault("uploads.max_bytes", 10<<20)
	v.SetDefault("uploads.max_width", 1920)
	v.SetDefault("llm.image_model", "dall-e-3")
	v.SetDefault("login.rate", 0.2)
	v.SetDefault("login.burst", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.PublicURL = strings.TrimRight(v.GetString("http.public_url"), "/")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Auth.Strategy = v.GetString("auth.strategy")
	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.OIDC.LogoutURL = v.GetString("oidc.logout_url")
	cfg.Session.Store = v.GetString("session.store")
	cfg.API.BaseURL = strings.TrimRight(v.GetString("api.base_url"), "/")
	cfg.Redis.URL = v.GetString("redis.url")
	cfg.Cache.Prefix = v.GetString("cache.prefix")
	cfg.Uploads.Dir = v.GetString("uploads.dir")
	cfg.Uploads.BaseURL = strings.TrimRight(v.GetString("uploads.base_url"), "/")
	cfg.Uploads.MaxBytes = v.GetInt64("uploads.max_bytes")
	cfg.Uploads.MaxWidth = v.GetInt("uploads.max_width")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.Prompt = v.GetString("llm.prompt")
	cfg.LLM.ImageModel = v.GetString("llm.image_model")
	cfg.Login.Rate = v.GetFloat64("login.rate")
	cfg.Login.Burst = v.GetInt("login.burst")
	cfg.OTel.Endpoint = v.GetString("otel.endpoint")
	cfg.OTel.Insecure = v.GetBool("otel.insecure")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	durations := []struct {
		key string
		env string
		dst *time.Duration
	}{
		{"auth.token_ttl", "FOXX_AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL},
		{"session.lifetime", "FOXX_SESSION_LIFETIME", &cfg.Session.Lifetime},
		{"session.resolve_timeout", "FOXX_SESSION_RESOLVE_TIMEOUT", &cfg.Session.ResolveTimeout},
		{"cache.ttl", "FOXX_CACHE_TTL", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("FOXX_DB_DRIVER must be one of sqlite3, mysql, postgres (got %q)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("FOXX_DB_DSN is required")
	}
	// A remote API issues its own tokens; the secret is only needed when this
	// process signs them.
	if c.API.BaseURL == "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("FOXX_AUTH_JWT_SECRET is required and must be at least 32 bytes")
	}
	switch c.Auth.Strategy {
	case StrategyPassword:
	case StrategyRedirect:
		if !c.OIDCEnabled() {
			return fmt.Errorf("FOXX_OIDC_ISSUER and FOXX_OIDC_CLIENT_ID are required for the redirect strategy")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("FOXX_OIDC_REDIRECT_URL is required for the redirect strategy")
		}
	default:
		return fmt.Errorf("FOXX_AUTH_STRATEGY must be %q or %q (got %q)", StrategyPassword, StrategyRedirect, c.Auth.Strategy)
	}
	switch c.Session.Store {
	case "db":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("FOXX_REDIS_URL is required when FOXX_SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("FOXX_SESSION_STORE must be db or redis (got %q)", c.Session.Store)
	}
	if c.Session.ResolveTimeout <= 0 {
		return fmt.Errorf("FOXX_SESSION_RESOLVE_TIMEOUT must be positive")
	}
	return nil
}
