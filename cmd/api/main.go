package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"eventcircle/config"
	_ "eventcircle/docs"
	"eventcircle/internal/adapters/email"
	"eventcircle/internal/adapters/feed"
	"eventcircle/internal/adapters/viewertoken"
	deliveryhttp "eventcircle/internal/delivery/http"
	"eventcircle/internal/delivery/http/controllers"
	"eventcircle/internal/delivery/http/middleware"
	"eventcircle/internal/domain"
	"eventcircle/internal/repository/memory"
	"eventcircle/internal/repository/postgres"
	"eventcircle/internal/repository/redisstore"
	"eventcircle/internal/repository/sqlite"
	"eventcircle/internal/services"
)

// @title Event Circle API
// @version 1.0
// @description Invite-based event membership: events, invitations, join requests and notifications.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server exited cleanly")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("close failed", "err", err)
			}
		}
	}()

	// Redis is shared by the viewer store and the change feed.
	var redisClient *redis.Client
	channel := cfg.MembershipChannel
	if channel == "" && cfg.ViewerStore == config.StoreRedis {
		channel = feed.DefaultChannel
	}
	if cfg.ViewerStore == config.StoreRedis || channel != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		closers = append(closers, client.Close)
		redisClient = client
		logger.Info("connected to redis")
	}
	return serve(ctx, cfg, logger, redisClient, channel, &closers)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, redisClient *redis.Client, channel string, closers *[]func() error) error {
	eventRepo, userRepo, err := openEventStore(ctx, cfg, logger, closers)
	if err != nil {
		return err
	}
	viewerStore, err := openViewerStore(ctx, cfg, redisClient, closers)
	if err != nil {
		return err
	}

	publisher := feed.NewNoopPublisher()
	if channel != "" {
		publisher = feed.NewRedisPublisher(redisClient, channel, logger)
	}

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipTLS,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventService := services.NewEventService(eventRepo, userRepo, emailService, publisher, logger, cfg.RequestTimeout)
	viewerService := services.NewViewerService(viewerStore, userRepo, logger, cfg.RequestTimeout)
	tokens := viewertoken.NewJWT(cfg.ViewerTokenSecret)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events:        controllers.NewEventController(logger, eventService),
		Membership:    controllers.NewMembershipController(logger, eventService),
		Users:         controllers.NewUserController(logger, eventService),
		Viewer:        controllers.NewViewerController(logger, viewerService),
		Notifications: controllers.NewNotificationController(logger, eventService),
	}, middleware.ResolveViewer(tokens, viewerService, cfg.ViewerTokenTTL, logger))

	var handler http.Handler = mux
	handler = middleware.AccessLog(logger, handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "event_store", cfg.EventStore, "viewer_store", cfg.ViewerStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func openEventStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers *[]func() error) (domain.EventRepository, domain.UserRepository, error) {
	if cfg.EventStore == config.StoreMemory {
		var seed []*domain.Event
		if cfg.SeedDemoData {
			seed = memory.DemoEvents(time.Now())
		}
		return memory.NewEventRepository(seed...), memory.NewUserRepository(memory.DemoUsers()), nil
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	*closers = append(*closers, db.Close)
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, nil, err
	}
	if err := postgres.SeedUsers(ctx, db, memory.DemoUsers()); err != nil {
		return nil, nil, err
	}
	eventRepo := postgres.NewEventRepository(db)
	if cfg.SeedDemoData {
		if err := seedEvents(ctx, eventRepo); err != nil {
			return nil, nil, err
		}
	}
	logger.Info("connected to postgres")
	return eventRepo, postgres.NewUserRepository(db), nil
}

// seedEvents inserts the demo events into an empty store.
func seedEvents(ctx context.Context, repo domain.EventRepository) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, e := range memory.DemoEvents(time.Now()) {
		if err := repo.Create(ctx, e); err != nil {
			return fmt.Errorf("seed event %q: %w", e.Title, err)
		}
	}
	return nil
}

func openViewerStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, closers *[]func() error) (domain.ViewerStore, error) {
	switch cfg.ViewerStore {
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, db.Close)
		return sqlite.NewViewerStore(db, cfg.ViewerTokenTTL), nil
	case config.StoreRedis:
		return redisstore.NewViewerStore(redisClient, cfg.ViewerTokenTTL), nil
	default:
		return memory.NewViewerStore(cfg.ViewerTokenTTL), nil
	}
}
