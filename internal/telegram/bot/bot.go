package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/pkg/logger"
	"github.com/futig/issue-assistant/internal/telegram/handlers"
	"github.com/futig/issue-assistant/internal/telegram/middleware"
	"github.com/futig/issue-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// UpdateHandler is implemented by handlers.Handler
type UpdateHandler interface {
	HandleCommand(ctx context.Context, msg *handlers.Message) error
	HandleQuestion(ctx context.Context, msg *handlers.Message) error
	HandleDocument(ctx context.Context, msg *handlers.Message) error
	HandleCallback(ctx context.Context, msg *handlers.Message) error
}

// Bot receives updates by long polling and runs each through the middleware chain
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	handler     UpdateHandler
	sender      *handlers.MessageSender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates a new Telegram bot around an authorized API client
func New(api *tgbotapi.BotAPI, cfg *config.TelegramConfig, handler UpdateHandler, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		handler:     handler,
		sender:      handlers.NewMessageSender(api, logger),
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		stopChan:    make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.rateLimitMW.RunCleanup(10*time.Minute, b.stopChan)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.Dispatch(ctx, u)
			}(update)
		}
	}
}

// Dispatch runs one update through rate limit, logging and recovery, then routes it
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				Route(ctx, b.handler, u3, b.sender)
			})
		})
	})
}

// Route sends a single update to the handler method for its kind
func Route(ctx context.Context, h UpdateHandler, update tgbotapi.Update, sender *handlers.MessageSender) {
	msg, kind := normalize(update)
	if msg == nil {
		return
	}

	ctx = logger.AddFields(ctx,
		zap.Int64("chat_id", msg.ChatID),
		zap.String("update_kind", kind),
	)

	var err error
	switch kind {
	case "callback":
		err = h.HandleCallback(ctx, msg)
	case "command":
		err = h.HandleCommand(ctx, msg)
	case "document":
		err = h.HandleDocument(ctx, msg)
	default:
		err = h.HandleQuestion(ctx, msg)
	}

	if err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		_ = sender.Send(msg.ChatID, render.ClassifyError(err), nil)
	}
}

func normalize(update tgbotapi.Update) (*handlers.Message, string) {
	if q := update.CallbackQuery; q != nil {
		if q.Message == nil {
			return nil, ""
		}
		return &handlers.Message{
			ChatID:       q.Message.Chat.ID,
			UserID:       q.From.ID,
			MessageID:    q.Message.MessageID,
			CallbackData: q.Data,
			CallbackID:   q.ID,
		}, "callback"
	}

	m := update.Message
	if m == nil || m.Chat == nil {
		return nil, ""
	}

	msg := &handlers.Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		Document:  m.Document,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}

	switch {
	case m.IsCommand():
		msg.Command = m.Command()
		msg.Args = m.CommandArguments()
		return msg, "command"
	case m.Document != nil:
		return msg, "document"
	case m.Text != "":
		return msg, "text"
	}
	return nil, ""
}
