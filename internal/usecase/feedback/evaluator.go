package feedback

import (
	"context"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Evaluator runs the configured scorers concurrently and collects their results
type Evaluator struct {
	scorers []Scorer
	metrics Metrics
	now     func() time.Time
}

func NewEvaluator(metrics Metrics, scorers ...Scorer) *Evaluator {
	return &Evaluator{
		scorers: scorers,
		metrics: metrics,
		now:     time.Now,
	}
}

// Evaluate returns only the metrics that were computed. A failing scorer is logged
// and left out of the result, so a missing key means "not computed".
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (map[string]float64, []entity.FeedbackRecord) {
	type scorerResult struct {
		score float64
		err   error
	}

	results := make([]scorerResult, len(e.scorers))
	g, gctx := errgroup.WithContext(ctx)

	for i, s := range e.scorers {
		i, s := i, s
		g.Go(func() error {
			score, err := s.Score(gctx, in)
			results[i] = scorerResult{score: score, err: err}
			// failures are collected per scorer, never abort the siblings
			return nil
		})
	}
	_ = g.Wait()

	timestamp := e.now()
	scores := make(map[string]float64, len(e.scorers))
	records := make([]entity.FeedbackRecord, 0, len(e.scorers))

	for i, s := range e.scorers {
		name := s.Name()
		if err := results[i].err; err != nil {
			ctxzap.Warn(ctx, "feedback scorer failed", zap.String("metric", name), zap.Error(err))
			if e.metrics != nil {
				e.metrics.RecordScorerFailure(name)
			}
			continue
		}

		score := results[i].score
		scores[name] = score
		records = append(records, entity.FeedbackRecord{Timestamp: timestamp, Name: name, Score: score})
		if e.metrics != nil {
			e.metrics.RecordScore(name, score)
		}
	}

	ctxzap.Debug(ctx, "feedback evaluated", zap.Int("computed", len(records)), zap.Int("configured", len(e.scorers)))

	return scores, records
}
