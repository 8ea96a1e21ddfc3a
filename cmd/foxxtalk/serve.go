package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/slyyfoxx/foxxtalk/internal/api"
	"github.com/slyyfoxx/foxxtalk/internal/apiclient"
	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/build"
	"github.com/slyyfoxx/foxxtalk/internal/cache"
	"github.com/slyyfoxx/foxxtalk/internal/config"
	"github.com/slyyfoxx/foxxtalk/internal/content"
	"github.com/slyyfoxx/foxxtalk/internal/db"
	"github.com/slyyfoxx/foxxtalk/internal/handler"
	"github.com/slyyfoxx/foxxtalk/internal/llm"
	"github.com/slyyfoxx/foxxtalk/internal/scheduler"
	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/internal/session"
	"github.com/slyyfoxx/foxxtalk/internal/settings"
	"github.com/slyyfoxx/foxxtalk/internal/store"
	"github.com/slyyfoxx/foxxtalk/internal/telemetry"
	"github.com/slyyfoxx/foxxtalk/internal/upload"
	"github.com/slyyfoxx/foxxtalk/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			logger.Info("starting foxxtalk", "version", build.String())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg)
			if err != nil {
				return fmt.Errorf("tracing: %w", err)
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			var redisClient *redis.Client
			if cfg.Redis.URL != "" {
				redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.URL, 0)
				if err != nil {
					return fmt.Errorf("redis: %w", err)
				}
				defer func() { _ = redisClient.Close() }()
			}

			var sm *scs.SessionManager
			switch {
			case cfg.Session.Store == "redis" && redisClient != nil:
				sm = auth.NewRedisSessionManager(redisClient, cfg.Cache.Prefix, cfg.Session.Lifetime, !cfg.InsecureCookies)
			case cfg.Session.Store == "redis":
				return errors.New("session.store=redis needs FOXX_REDIS_URL")
			default:
				sm = auth.NewSessionManager(database, cfg.DB.Driver, cfg.Session.Lifetime, !cfg.InsecureCookies)
			}

			var provider *auth.Provider
			if cfg.OIDCEnabled() {
				if provider, err = auth.NewProvider(ctx, cfg); err != nil {
					return fmt.Errorf("oidc: %w", err)
				}
			}

			sections, err := section.NewRenderer(web.TemplateFS, logger)
			if err != nil {
				return err
			}

			// The password form and /api/auth/login share one budget per client.
			limiter := api.NewLoginLimiter(cfg.Login.Rate, cfg.Login.Burst)
			deps := handler.Deps{
				SessionManager: sm,
				LoginLimiter:   limiter,
				Sections:       sections,
				RedirectFlow:   auth.RedirectFlow{Secure: !cfg.InsecureCookies},
				RedirectLogin:  cfg.Auth.Strategy == config.StrategyRedirect,
				MaxUploadBytes: cfg.Uploads.MaxBytes,
				TrustedOrigins: trustedOrigins(cfg.HTTP.PublicURL),
				Logger:         logger,
			}
			sessOpts := session.Options{
				Storage:        session.NewSCSStorage(sm),
				Redirect:       redirectConfig(cfg, provider),
				ResolveTimeout: cfg.Session.ResolveTimeout,
				Logger:         logger,
			}

			if cfg.API.BaseURL != "" {
				// Content, accounts and tokens belong to the remote API. Its
				// tokens are read without verifying the signature.
				client := apiclient.New(cfg.API.BaseURL, nil)
				sessOpts.Backend = client
				sessOpts.Parser = session.PayloadParser{}
				deps.Content = client
				logger.Info("using remote content API", "base_url", cfg.API.BaseURL)
			} else {
				local := newLocalStack(cfg, database, redisClient, provider, logger)
				sessOpts.Backend = local.auth
				sessOpts.Parser = local.parser
				sessOpts.Verifier = local.auth
				deps.Content = local.content
				deps.UploadsDir = cfg.Uploads.Dir
				deps.UploadsURL = cfg.Uploads.BaseURL
				deps.API = api.NewAPIRouter(api.Deps{
					Content:        local.content,
					Auth:           local.auth,
					LoginLimiter:   limiter,
					MaxUploadBytes: cfg.Uploads.MaxBytes,
					Logger:         logger,
				})

				sched := scheduler.New(local.tokens, logger)
				if err := sched.Start(); err != nil {
					return fmt.Errorf("scheduler: %w", err)
				}
				defer sched.Stop()
			}
			deps.Sessions = session.NewManager(sessOpts)

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           otelhttp.NewHandler(handler.NewRouter(deps), "foxxtalk"),
				ReadHeaderTimeout: 10 * time.Second,
			}
			// Shutdown waits for handlers to return; event streams only do
			// once their broker is closed.
			srv.RegisterOnShutdown(deps.Sessions.Broker().Close)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.HTTP.Addr, "public_url", cfg.HTTP.PublicURL)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

// localStack is the content and auth side served from the local database.
type localStack struct {
	content *content.Service
	auth    *auth.Service
	tokens  auth.TokenStore
	parser  session.HMACParser
}

func newLocalStack(cfg *config.Config, database *sqlx.DB, rc *redis.Client, provider *auth.Provider, logger *slog.Logger) *localStack {
	users := store.NewUserStore(database)
	tokens := auth.NewSQLTokenStore(database)
	issuer := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, tokens)
	authSvc := auth.NewService(users, issuer, tokens, provider, logger)

	var settingsCache cache.Cache
	if rc != nil {
		settingsCache = cache.NewRedisCacheWithClient(rc, cfg.Cache.Prefix, cfg.Cache.TTL)
	} else {
		settingsCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	gen, err := llm.New(cfg)
	if err != nil {
		logger.Warn("AI assistance disabled", "error", err)
	}

	svc := content.NewService(content.Options{
		Posts:     store.NewPostStore(database),
		Settings:  settings.NewService(store.NewSettingStore(database), settingsCache, cfg.Cache.TTL, logger),
		Uploads:   upload.NewStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL, cfg.Uploads.MaxBytes, cfg.Uploads.MaxWidth),
		Generator: gen,
		Auth:      auth.NewBearerTokenMiddleware(issuer.Parser(), tokens, users, logger),
		Accounts:  authSvc,
		Logger:    logger,
	})
	return &localStack{content: svc, auth: authSvc, tokens: tokens, parser: issuer.Parser()}
}

func redirectConfig(cfg *config.Config, provider *auth.Provider) *session.RedirectConfig {
	if provider == nil {
		return nil
	}
	return &session.RedirectConfig{
		OAuth2:    provider.OAuth2Config(),
		LogoutURL: cfg.OIDC.LogoutURL,
		ReturnTo:  cfg.HTTP.PublicURL + "/",
	}
}

// trustedOrigins allows form posts from the public host when the site runs
// behind a proxy that rewrites Host.
func trustedOrigins(publicURL string) []string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
