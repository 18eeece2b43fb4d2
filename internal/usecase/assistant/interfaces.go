package assistant

import (
	"context"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/usecase/feedback"
)

type SearchConnector interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// CompletionConnector returns the raw first-row rendering of a completion call
type CompletionConnector interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

type FeedbackEvaluator interface {
	Evaluate(ctx context.Context, in feedback.Input) (map[string]float64, []entity.FeedbackRecord)
}

type Metrics interface {
	RecordTurn(outcome string)
	ObserveStage(stage string, start time.Time, err *error)
	RecordStoreFailure()
}
