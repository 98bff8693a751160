package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/lock"
	"eventhub/internal/adapters/stats"
	httpdelivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

// @title Eventhub API
// @version 1.0
// @description Event publishing, moderation, participation requests and public search.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	requestRepo := postgres.NewParticipationRequestRepository(db)
	statsClient := stats.NewClient(cfg.StatsServerURL, &http.Client{Timeout: cfg.RequestTimeout})

	eventService := services.NewEventService(eventRepo, userRepo,
		postgres.NewCategoryRepository(db), postgres.NewLocationRepository(db), requestRepo, cfg.RequestTimeout)
	requestService := services.NewRequestService(requestRepo, eventRepo, userRepo, locker, emailService, logger, cfg.RequestTimeout)
	searchService := services.NewSearchService(eventRepo, requestRepo, statsClient, cfg.StatsAppName, logger, cfg.RequestTimeout)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	go limiter.Run(ctx, 10*time.Minute)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		UserEvents:   controllers.NewUserEventController(logger, eventService, requestService),
		AdminEvents:  controllers.NewAdminEventController(logger, eventService, searchService),
		PublicEvents: controllers.NewPublicEventController(logger, searchService),
		Requests:     controllers.NewRequestController(logger, requestService),
	}, limiter)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "lock_backend", cfg.LockBackend)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.EventLocker, func(), error) {
	if cfg.LockBackend != config.LockBackendRedis {
		return lock.NewMemoryLocker(), func() {}, nil
	}
	client, err := lock.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return lock.NewRedisLocker(client, cfg.LockTTL, logger), func() { _ = client.Close() }, nil
}
