package telegram

import (
	"context"
	"fmt"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/telegram/bot"
	"github.com/futig/issue-assistant/internal/telegram/handlers"
	"github.com/futig/issue-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and wires the handlers
func NewBot(
	cfg *config.TelegramConfig,
	maxFileSize int64,
	storage state.Storage,
	assistantUC handlers.AssistantUsecase,
	documentUC handlers.DocumentUsecase,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	handler := handlers.NewHandler(
		api,
		assistantUC,
		documentUC,
		state.NewManager(storage),
		handlers.NewFileDownloader(api, maxFileSize),
		logger,
	)

	return bot.New(api, cfg, handler, logger), nil
}
