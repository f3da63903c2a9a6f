// Package app wires the service together: config, storage, domain services,
// HTTP server, health probes, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bookshelf-backend/internal/cache"
	"github.com/xenking/bookshelf-backend/internal/domain/book"
	"github.com/xenking/bookshelf-backend/internal/domain/user"
	"github.com/xenking/bookshelf-backend/internal/handler"
	"github.com/xenking/bookshelf-backend/internal/mail"
	"github.com/xenking/bookshelf-backend/internal/storage/postgres"
	"github.com/xenking/bookshelf-backend/pkg/health"
	"github.com/xenking/bookshelf-backend/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis catalog cache.
	redisClient, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	defer redisClient.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	// Reachability only: HTTPGetCheck tolerates 4xx, so the probe spends no
	// upstream quota.
	if cfg.UpstreamCheck {
		healthSvc.AddReadinessCheck("upstream", 5*time.Second, health.HTTPGetCheck(nil, cfg.BooksAPIURL))
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	codeRepo := postgres.NewVerificationRepository(pool)
	shippingRepo := postgres.NewShippingRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	bookRepo := postgres.NewBookRepository(pool)

	// Collaborators.
	mailer, err := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return errors.Wrap(err, "create mailer")
	}
	tokens := user.NewTokenIssuer([]byte(cfg.AccessTokenKey), []byte(cfg.RefreshTokenKey))

	// Domain services.
	userSvc := user.NewService(userRepo, codeRepo, mailer, tokens, lg.Named("user"))
	catalog := book.NewService(
		book.NewUpstreamClient(cfg.BooksAPIURL),
		cache.NewBookCache(redisClient, cfg.CacheTTL),
		bookRepo,
		lg.Named("catalog"),
	)

	// HTTP handlers.
	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(
		userSvc,
		userRepo,
		codeRepo,
		tokens,
		catalog,
		shippingRepo,
		historyRepo,
		lg.Named("http"),
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Router())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
				Skip: func(r *http.Request) bool {
					return r.URL.Path == "/livez" || r.URL.Path == "/readyz"
				},
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("bookshelf-api", m),
			httpmiddleware.Metrics(m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
