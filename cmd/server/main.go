package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/yamdb/reviewhub/docs"
	"github.com/yamdb/reviewhub/internal/api"
	"github.com/yamdb/reviewhub/internal/bootstrap"
	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/core/service"
	"github.com/yamdb/reviewhub/internal/infrastructure/config"
	"github.com/yamdb/reviewhub/internal/infrastructure/db/redis"
	"github.com/yamdb/reviewhub/internal/infrastructure/http/handlers"
	"github.com/yamdb/reviewhub/internal/infrastructure/notify"
	"github.com/yamdb/reviewhub/internal/infrastructure/security"
	"github.com/yamdb/reviewhub/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                      reviewhub API
// @version                    1.0
// @description                Reviews and comments on categorized titles, with email-code signup and bearer tokens.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "reviewhub-api",
	})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			log.Error().Err(err).Msg("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeWithTimeout(log, "store", store.Close)

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	defer rdb.Close()

	notifier, closeNotifier, err := newNotifier(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("mail transport: %w", err)
	}
	defer closeNotifier()

	codes, err := security.NewConfirmationCodes(cfg.Auth.SecretKey, cfg.Auth.ConfirmationTTL)
	if err != nil {
		return err
	}
	tokens := security.NewJWTIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)

	signupLimiter, err := redis.NewRateLimiter(rdb, "ratelimit:signup", cfg.Auth.RateLimitRequests, cfg.Auth.RateLimitWindow)
	if err != nil {
		return err
	}
	tokenLimiter, err := redis.NewRateLimiter(rdb, "ratelimit:token", cfg.Auth.RateLimitRequests, cfg.Auth.RateLimitWindow)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth:          service.NewAuthService(store.Users, codes, tokens, notifier, log),
		Users:         service.NewUserService(store.Users, log),
		Catalog:       service.NewCatalogService(store.Categories, store.Genres, store.Titles, log),
		Reviews:       service.NewReviewService(store.Titles, store.Reviews, store.Comments, log),
		SignupLimiter: signupLimiter,
		TokenLimiter:  tokenLimiter,
		Checks: []handlers.Check{
			store.Check,
			{Name: "redis", Ping: redis.Pinger(rdb)},
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newNotifier builds the confirmation transport named by cfg.Transport.
func newNotifier(cfg config.MailConfig, log zerolog.Logger) (ports.Notifier, func(), error) {
	var (
		next    ports.Notifier
		closeFn = func() {}
	)
	switch cfg.Transport {
	case config.MailSMTP:
		next = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
		})
	case config.MailAMQP:
		n, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		next = n
		closeFn = func() {
			if err := n.Close(); err != nil {
				log.Warn().Err(err).Msg("amqp close")
			}
		}
	default:
		next = notify.NewLogNotifier(log)
	}
	return notify.NewInstrumented(next, cfg.Transport), closeFn, nil
}

func closeWithTimeout(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("resource", name).Msg("close failed")
	}
}
