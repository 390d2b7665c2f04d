package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/conversation-api/internal/config"
	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/auth"
	"jan-server/services/conversation-api/internal/infrastructure/database"
	"jan-server/services/conversation-api/internal/infrastructure/logger"
	"jan-server/services/conversation-api/internal/infrastructure/observability"
	"jan-server/services/conversation-api/internal/infrastructure/queue"
	conversationrepo "jan-server/services/conversation-api/internal/infrastructure/repository/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/titlegen"
	"jan-server/services/conversation-api/internal/interfaces/httpserver"
	"jan-server/services/conversation-api/internal/worker"
)

// @title Conversation API
// @version 1.0
// @description Manages multi-user conversations and messages with background title generation.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(ctx, database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := conversationrepo.NewMessageRepository(db)

	var generator conversation.TitleGenerator
	if cfg.TitleGenEnabled {
		generator = titlegen.NewClient(cfg.TitleLLMBaseURL, cfg.TitleLLMAPIKey, cfg.TitleLLMModel, cfg.TitleTimeout, log)
	}

	conversationService := conversation.NewConversationService(
		conversationRepository,
		messageRepository,
		generator,
		cfg.TitleTimeout,
		log,
	)

	eg, egCtx := errgroup.WithContext(ctx)

	// Title derivation runs only when a generator is configured.
	if generator != nil {
		titleQueue := queue.NewPostgresQueue(db, cfg.TitleClaimWindow, log)
		workerPool := worker.NewPool(
			titleQueue,
			conversationService,
			worker.Config{
				WorkerCount:  cfg.TitleWorkers,
				PollInterval: cfg.TitlePollEvery,
				TaskTimeout:  cfg.TitleTimeout,
			},
			log,
		)

		if err := workerPool.Start(egCtx); err != nil {
			log.Fatal().Err(err).Msg("start title worker pool")
		}
		eg.Go(func() error {
			<-egCtx.Done()
			log.Info().Msg("stopping title worker pool")
			workerPool.Stop()
			return nil
		})
	}

	httpServer := httpserver.New(cfg, log, conversationService, authValidator)
	app := NewApplication(httpServer, log)

	eg.Go(func() error {
		return app.Start(egCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
