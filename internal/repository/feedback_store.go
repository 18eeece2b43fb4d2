package repository

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
)

// FeedbackRepository persists feedback records
type FeedbackRepository interface {
	Save(ctx context.Context, records []entity.FeedbackRecord) error
}

var _ FeedbackRepository = NoopFeedback{}

// NoopFeedback discards records, used when no durable store is configured
type NoopFeedback struct{}

func (NoopFeedback) Save(context.Context, []entity.FeedbackRecord) error {
	return nil
}
