package conversation

import (
	"github.com/futig/issue-assistant/internal/entity"
)

func toConversationDTO(c *entity.Conversation) *entity.ConversationDTO {
	model, useHistory := c.Settings()
	return &entity.ConversationDTO{
		ID:         c.ID,
		State:      c.State(),
		Model:      model,
		UseHistory: useHistory,
		Turns:      c.Turns(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.LastUpdated(),
	}
}

func toAnswerDTO(conversationID string, state entity.TurnState, result *entity.TurnResult, records []entity.FeedbackRecord) *entity.AnswerDTO {
	dto := &entity.AnswerDTO{
		ConversationID: conversationID,
		State:          state,
	}

	if result.Err != nil {
		dto.Error = result.Err.Error()
		return dto
	}

	dto.Response = result.Response
	dto.Feedback = result.Feedback
	if n := len(records); n > 0 && len(result.Feedback) > 0 {
		ts := records[n-1].Timestamp
		dto.EvaluatedAt = &ts
	}
	return dto
}
