package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/notify"
	"yamdb/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const tokenSweepInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// mail goes out on its own context so queued codes survive until Close
	mailer := notify.NewDispatcher(context.Background(), newSender(cfg, logger), cfg.MailFrom, cfg.MailWorkers, cfg.MailQueueSize, logger)
	defer mailer.Close()

	limiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closer, ok := limiter.(io.Closer); ok {
		defer closer.Close()
	}

	authService := service.NewAuthService(userRepo, refreshRepo, mailer, cfg)
	router := handler.NewRouter(handler.Services{
		Auth:       authService,
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Genres:     service.NewGenreService(genreRepo),
		Titles:     service.NewTitleService(titleRepo, reviewRepo, categoryRepo, genreRepo),
		Reviews:    service.NewReviewService(reviewRepo),
		Comments:   service.NewCommentService(commentRepo),
		Resolver:   service.NewResolver(titleRepo, reviewRepo, commentRepo, userRepo),
		UserRepo:   userRepo,
	}, handler.RouterConfig{
		Logger:      logger,
		AuthLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		Health: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})

	go sweepRefreshTokens(ctx, refreshRepo, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_http_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped_gracefully")
	return nil
}

func newSender(cfg *config.Config, logger *slog.Logger) notify.Sender {
	if cfg.MailRelayURL == "" {
		logger.Warn("MAIL_RELAY_URL not set, confirmation codes will only be logged")
		return notify.NewLogSender(logger)
	}
	return notify.NewWebhookSender(cfg.MailRelayURL, 5, 10)
}

func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process auth rate limiter")
		return ratelimit.NewLocalLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow), nil
	}
	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow), nil
}

// sweepRefreshTokens drops expired and revoked refresh tokens until ctx ends.
func sweepRefreshTokens(ctx context.Context, repo repository.RefreshTokenRepository, logger *slog.Logger) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("refresh token sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("refresh tokens swept", "count", n)
			}
		}
	}
}
