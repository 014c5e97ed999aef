// Package main is the entrypoint for the Kizofa API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kizofa/kizofa/internal/cache"
	"github.com/kizofa/kizofa/internal/config"
	"github.com/kizofa/kizofa/internal/handler"
	"github.com/kizofa/kizofa/internal/metrics"
	"github.com/kizofa/kizofa/internal/middleware"
	"github.com/kizofa/kizofa/internal/ratelimit"
	"github.com/kizofa/kizofa/internal/repository"
	"github.com/kizofa/kizofa/internal/server"
	"github.com/kizofa/kizofa/internal/service"
	"github.com/kizofa/kizofa/internal/token"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Redis is optional. Without it the auth rate limiter runs in-process,
	// which is fine for a single replica.
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	}

	var limiter ratelimit.Limiter
	var memLimiter *ratelimit.MemoryLimiter
	if cacheClient != nil {
		limiter = cacheClient.Limiter(cfg.RateLimitAuthMax, cfg.RateLimitAuthWindow)
	} else {
		memLimiter = ratelimit.NewMemory(cfg.RateLimitAuthMax, cfg.RateLimitAuthWindow)
		limiter = memLimiter
	}

	recorder := metrics.NewInMemory()
	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authService := service.NewAuthService(repo, issuer, logger, recorder)

	h := handler.New(version)
	healthHandler := newHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(h, healthHandler, authHandler, metricsHandler, authService, limiter, recorder, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if memLimiter != nil {
		srv.OnShutdown("rate limiter", memLimiter.Clear)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.TokenTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newHealthHandler builds the health handler without handing it a typed
// nil when Redis is not configured.
func newHealthHandler(repo *repository.Repository, cacheClient *cache.Cache) *handler.HealthHandler {
	if cacheClient == nil {
		return handler.NewHealthHandler(repo, nil)
	}
	return handler.NewHealthHandler(repo, cacheClient)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	metricsHandler *handler.MetricsHandler,
	authService *service.AuthService,
	limiter ratelimit.Limiter,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	authCfg := middleware.AuthConfig{
		Logger:  logger,
		Tokens:  authService,
		Metrics: recorder,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: limiter,
		Metrics: recorder,
		Enabled: cfg.RateLimitAuthEnabled,
		Limit:   cfg.RateLimitAuthMax,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints, rate limited per client IP
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitAuth(rateLimitCfg))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Token-protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(authCfg))
			r.Get("/me", authHandler.Me)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/metrics", metricsHandler.Metrics)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
