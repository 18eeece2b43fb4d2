package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/telegram/keyboard"
	"github.com/futig/issue-assistant/internal/telegram/render"
	"github.com/futig/issue-assistant/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// feedbackLimit caps the records shown by /feedback
const feedbackLimit = 10

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	Args         string
	Document     *tgbotapi.Document
	CallbackData string
	CallbackID   string
}

// Handler turns chat messages into assistant operations. Every chat owns one
// conversation; a chat whose conversation expired silently gets a new one.
type Handler struct {
	api        Sender
	sender     *MessageSender
	assistant  AssistantUsecase
	documents  DocumentUsecase
	chats      *state.Manager
	downloader Downloader
	keyboard   *keyboard.Builder
	logger     *zap.Logger
}

func NewHandler(
	api Sender,
	assistant AssistantUsecase,
	documents DocumentUsecase,
	chats *state.Manager,
	downloader Downloader,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		api:        api,
		sender:     NewMessageSender(api, logger),
		assistant:  assistant,
		documents:  documents,
		chats:      chats,
		downloader: downloader,
		keyboard:   keyboard.NewBuilder(),
		logger:     logger,
	}
}

// conversation returns the chat conversation, starting a new one when the chat has
// none or its conversation expired from the cache
func (h *Handler) conversation(ctx context.Context, chatID int64) (*entity.Conversation, error) {
	id, err := h.chats.Ensure(ctx, chatID, h.startConversation)
	if err != nil {
		return nil, err
	}

	conv, err := h.assistant.GetConversation(ctx, id)
	if errors.Is(err, entity.ErrConversationNotFound) {
		ctxzap.Info(ctx, "conversation expired, starting a new one", zap.String("conversation_id", id))
		if id, err = h.chats.Rebind(ctx, chatID, h.startConversation); err != nil {
			return nil, err
		}
		conv, err = h.assistant.GetConversation(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

func (h *Handler) startConversation(ctx context.Context) (string, error) {
	conv, err := h.assistant.NewConversation(ctx, "", nil)
	if err != nil {
		return "", err
	}
	return conv.ID, nil
}

func (h *Handler) send(chatID int64, text string, markup any) {
	_ = h.sender.Send(chatID, render.Truncate(text, render.MaxMessageLength), markup)
}

// sendError logs err and shows its user-facing message
func (h *Handler) sendError(ctx context.Context, chatID int64, msg string, err error) {
	if errors.Is(err, entity.ErrTurnInProgress) || errors.Is(err, entity.ErrUnsupportedFileType) ||
		errors.Is(err, entity.ErrFileTooLarge) || errors.Is(err, entity.ErrFileParse) {
		ctxzap.Warn(ctx, msg, zap.Error(err), zap.Int64("chat_id", chatID))
	} else {
		ctxzap.Error(ctx, msg, zap.Error(err), zap.Int64("chat_id", chatID))
	}
	h.send(chatID, render.ClassifyError(err), nil)
}
