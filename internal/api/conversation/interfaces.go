package conversation

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/pkg/formatter"
)

type AssistantUsecase interface {
	NewConversation(ctx context.Context, model string, useHistory *bool) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	Ask(ctx context.Context, conversationID, question string) (*entity.TurnResult, error)
	Reset(ctx context.Context, conversationID string) (*entity.Conversation, error)
	UpdateSettings(ctx context.Context, conversationID string, req *entity.UpdateSettingsRequest) (*entity.Conversation, error)
	Feedback(ctx context.Context, conversationID string) ([]entity.FeedbackRecord, error)
	Transcript(ctx context.Context, conversationID string, format entity.ResultFormat) ([]byte, formatter.Formatter, error)
	Models() []string
}

type Validator interface {
	ValidateQuestion(req *entity.AskQuestionRequest) error
	ValidateSettings(req *entity.UpdateSettingsRequest) error
}
