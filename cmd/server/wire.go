//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/conversation-api/internal/config"
	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/auth"
	"jan-server/services/conversation-api/internal/infrastructure/database"
	"jan-server/services/conversation-api/internal/infrastructure/logger"
	conversationrepo "jan-server/services/conversation-api/internal/infrastructure/repository/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/titlegen"
	"jan-server/services/conversation-api/internal/interfaces/httpserver"
)

var conversationSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	conversationrepo.NewMessageRepository,
	wire.Bind(new(conversation.MessageRepository), new(*conversationrepo.MessageRepository)),
	newTitleGenerator,
	newConversationService,
)

// BuildApplication demonstrates how to assemble the conversation service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		conversationSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg *config.Config, dbCfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newTitleGenerator(cfg *config.Config, log zerolog.Logger) conversation.TitleGenerator {
	if !cfg.TitleGenEnabled {
		return nil
	}
	return titlegen.NewClient(cfg.TitleLLMBaseURL, cfg.TitleLLMAPIKey, cfg.TitleLLMModel, cfg.TitleTimeout, log)
}

func newConversationService(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	generator conversation.TitleGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *conversation.ConversationService {
	return conversation.NewConversationService(conversations, messages, generator, cfg.TitleTimeout, log)
}
