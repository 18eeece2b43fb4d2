package handlers

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/pkg/formatter"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AssistantUsecase is the subset of conversation operations used by the bot
type AssistantUsecase interface {
	NewConversation(ctx context.Context, model string, useHistory *bool) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	Ask(ctx context.Context, conversationID, question string) (*entity.TurnResult, error)
	Reset(ctx context.Context, conversationID string) (*entity.Conversation, error)
	SelectModel(ctx context.Context, conversationID, model string) (*entity.Conversation, error)
	SetUseHistory(ctx context.Context, conversationID string, use bool) (*entity.Conversation, error)
	Feedback(ctx context.Context, conversationID string) ([]entity.FeedbackRecord, error)
	Transcript(ctx context.Context, conversationID string, format entity.ResultFormat) ([]byte, formatter.Formatter, error)
	Models() []string
}

type DocumentUsecase interface {
	Extract(ctx context.Context, filename string, content []byte) (*entity.ExtractedDocument, error)
	ListDocuments(ctx context.Context) ([]entity.StageDocument, error)
}

// Sender is the part of the Telegram API the handlers talk to. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Downloader fetches a file attached to a message
type Downloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}
