package feedback

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
)

// Completer returns the cleaned completion text for a prompt
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Scorer rates one question/response pair. Scores are scalars in [0, 1].
type Scorer interface {
	Name() string
	Score(ctx context.Context, in Input) (float64, error)
}

// Input carries what a scorer may look at. Passages are the ones retrieved for the
// prompt, not the final response.
type Input struct {
	Question string
	Response string
	Passages []entity.RetrievedPassage
}

type Metrics interface {
	RecordScore(metric string, score float64)
	RecordScorerFailure(metric string)
}
