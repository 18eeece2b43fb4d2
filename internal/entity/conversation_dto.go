package entity

import "time"

type CreateConversationRequest struct {
	Model      string `json:"model,omitempty"`
	UseHistory *bool  `json:"use_history,omitempty"`
}

type AskQuestionRequest struct {
	Question string `json:"question"`
}

type UpdateSettingsRequest struct {
	Model      *string `json:"model,omitempty"`
	UseHistory *bool   `json:"use_history,omitempty"`
}

type ConversationDTO struct {
	ID         string    `json:"conversation_id"`
	State      TurnState `json:"state"`
	Model      string    `json:"model"`
	UseHistory bool      `json:"use_history"`
	Turns      []Turn    `json:"turns"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AnswerDTO is the rendered outcome of one turn. Error is set instead of
// Response when the turn failed; the conversation stays usable either way.
type AnswerDTO struct {
	ConversationID string             `json:"conversation_id"`
	State          TurnState          `json:"state"`
	Response       string             `json:"response,omitempty"`
	Feedback       map[string]float64 `json:"feedback,omitempty"`
	EvaluatedAt    *time.Time         `json:"evaluated_at,omitempty"`
	Error          string             `json:"error,omitempty"`
}

type FeedbackHistoryDTO struct {
	ConversationID string           `json:"conversation_id"`
	Records        []FeedbackRecord `json:"records"`
}
