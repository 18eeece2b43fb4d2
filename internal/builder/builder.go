package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/issue-assistant/internal/api"
	conversationapi "github.com/futig/issue-assistant/internal/api/conversation"
	documentapi "github.com/futig/issue-assistant/internal/api/document"
	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/integration/common"
	"github.com/futig/issue-assistant/internal/integration/completion"
	"github.com/futig/issue-assistant/internal/integration/search"
	"github.com/futig/issue-assistant/internal/integration/statement"
	"github.com/futig/issue-assistant/internal/pkg/formatter"
	pkgLogger "github.com/futig/issue-assistant/internal/pkg/logger"
	"github.com/futig/issue-assistant/internal/pkg/metrics"
	"github.com/futig/issue-assistant/internal/pkg/validator"
	"github.com/futig/issue-assistant/internal/repository"
	"github.com/futig/issue-assistant/internal/telegram"
	"github.com/futig/issue-assistant/internal/telegram/state"
	"github.com/futig/issue-assistant/internal/usecase/assistant"
	"github.com/futig/issue-assistant/internal/usecase/document"
	"github.com/futig/issue-assistant/internal/usecase/feedback"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// core holds everything the surfaces share
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	metrics   *metrics.Collector
	validator *validator.Validator
	assistant *assistant.AssistantUsecase
	documents *document.DocumentUsecase
}

type loggerFactory func(cfg *config.Config) (*zap.Logger, error)

func consoleLogger(cfg *config.Config) (*zap.Logger, error) {
	return pkgLogger.New(cfg.LogLevel, cfg.Environment, cfg.LogFile)
}

func fileLogger(cfg *config.Config) (*zap.Logger, error) {
	return pkgLogger.NewFileOnly(cfg.LogLevel, cfg.LogFile)
}

func (c *core) close() {
	if c.db != nil {
		c.db.Close()
	}
	_ = c.logger.Sync()
}

func buildCore(ctx context.Context, newLogger loggerFactory) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
		zap.String("feedback_store", cfg.FeedbackCfg.Store),
	)

	c := &core{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.NewCollector(),
		validator: validator.NewValidator(cfg.FileUploadCfg),
	}

	// Initialize external service connectors (with mock support)
	var (
		executor       repository.StatementExecutor
		searchConn     assistant.SearchConnector
		completionConn assistant.CompletionConnector
	)

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		executor = statement.NewMockConnector(logger)
		searchConn = search.NewMockConnector(logger)
		completionConn = completion.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		source, err := common.NewTokenSource(cfg.SnowflakeCfg)
		if err != nil {
			return nil, fmt.Errorf("setup authentication: %w", err)
		}
		sqlAPI := statement.NewConnector(cfg.SnowflakeCfg, source, logger)
		executor = sqlAPI
		searchConn = search.NewConnector(cfg.SnowflakeCfg, cfg.SearchCfg, source, logger)
		completionConn = completion.NewConnector(sqlAPI, logger)
	}

	feedbackStore, err := c.buildFeedbackStore(ctx, executor)
	if err != nil {
		return nil, err
	}

	catalog := entity.NewModelCatalog(cfg.Profile.Models)
	completer := assistant.NewCompleter(completionConn, catalog)

	scorers := []feedback.Scorer{feedback.NewContextRelevance(completer, cfg.FeedbackCfg.JudgeModel)}
	if cfg.FeedbackCfg.AnswerRelevance {
		scorers = append(scorers, feedback.NewAnswerRelevance(completer, cfg.FeedbackCfg.JudgeModel))
	}

	conversations := repository.NewConversationCache(cfg.ConversationTTL)
	c.metrics.TrackConversations(conversations.Count)

	c.assistant = assistant.NewUsecase(
		conversations,
		feedbackStore,
		assistant.NewRetriever(searchConn, cfg.SearchCfg.Limit),
		assistant.NewSummarizer(completer),
		completer,
		feedback.NewEvaluator(c.metrics, scorers...),
		catalog,
		formatter.NewFactory(),
		c.metrics,
		assistant.Options{
			SlideWindow:  cfg.AssistantCfg.SlideWindow,
			DefaultModel: cfg.AssistantCfg.DefaultModel,
			UseHistory:   cfg.AssistantCfg.UseHistory,
			Title:        cfg.Profile.Title,
		},
		logger,
	)

	c.documents = document.NewUsecase(executor, cfg.SnowflakeCfg.DocsStage, c.validator, c.metrics, logger)
	logger.Info("Use cases initialized")

	return c, nil
}

func (c *core) buildFeedbackStore(ctx context.Context, executor repository.StatementExecutor) (repository.FeedbackRepository, error) {
	switch c.cfg.FeedbackCfg.Store {
	case config.FeedbackStorePostgres:
		db, err := setupDatabase(ctx, c.cfg, c.logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
		c.db = db
		return repository.NewFeedbackPostgres(db, c.cfg.FeedbackCfg.Retry), nil
	case config.FeedbackStoreWarehouse:
		return repository.NewFeedbackWarehouse(executor, c.cfg.FeedbackCfg.Table, c.cfg.FeedbackCfg.Retry), nil
	default:
		return repository.NoopFeedback{}, nil
	}
}

// Build assembles the HTTP API application
func Build() (*App, error) {
	c, err := buildCore(context.Background(), consoleLogger)
	if err != nil {
		return nil, err
	}

	conversationHandler := conversationapi.NewHandler(c.assistant, c.validator)
	documentHandler := documentapi.NewHandler(c.documents, c.cfg.FileUploadCfg)
	c.logger.Info("API handlers initialized")

	router := api.SetupRouter(
		conversationHandler,
		documentHandler,
		c.metrics.Handler(),
		c.cfg.RequestTimeout,
		c.cfg.SwaggerPath,
		c.logger,
	)

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: c.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully", zap.String("server_addr", c.cfg.ServerAddr))

	return &App{
		server: server,
		db:     c.db,
		logger: c.logger,
	}, nil
}

// BuildTelegramBot assembles the Telegram bot over the shared use cases
func BuildTelegramBot() (*BotApp, error) {
	c, err := buildCore(context.Background(), consoleLogger)
	if err != nil {
		return nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		c.close()
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	bot, err := telegram.NewBot(
		&c.cfg.TelegramCfg,
		c.cfg.FileUploadCfg.MaxFileSize,
		state.NewCacheStorage(c.cfg.ConversationTTL),
		c.assistant,
		c.documents,
		c.logger,
	)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully", zap.Bool("mocks", c.cfg.EnableMocks))

	return &BotApp{
		bot:    bot,
		db:     c.db,
		logger: c.logger,
	}, nil
}

// Terminal is the assembled terminal UI dependencies
type Terminal struct {
	Assistant    *assistant.AssistantUsecase
	Conversation *entity.Conversation
	Title        string
	Logger       *zap.Logger
	close        func()
}

func (t *Terminal) Close() { t.close() }

// BuildTerminal prepares one conversation for the terminal UI
func BuildTerminal(ctx context.Context) (*Terminal, error) {
	c, err := buildCore(ctx, fileLogger)
	if err != nil {
		return nil, err
	}

	conv, err := c.assistant.NewConversation(ctx, "", nil)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("start conversation: %w", err)
	}

	return &Terminal{
		Assistant:    c.assistant,
		Conversation: conv,
		Title:        c.cfg.Profile.Title,
		Logger:       c.logger,
		close:        c.close,
	}, nil
}
