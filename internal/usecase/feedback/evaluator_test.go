package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	name  string
	score float64
	err   error
	delay time.Duration
}

func (s stubScorer) Name() string { return s.name }

func (s stubScorer) Score(ctx context.Context, _ Input) (float64, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.score, s.err
}

type recordingMetrics struct {
	mu       sync.Mutex
	scores   map[string]float64
	failures []string
}

func (m *recordingMetrics) RecordScore(metric string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scores == nil {
		m.scores = map[string]float64{}
	}
	m.scores[metric] = score
}

func (m *recordingMetrics) RecordScorerFailure(metric string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, metric)
}

func TestEvaluator_OmitsFailedMetric(t *testing.T) {
	metrics := &recordingMetrics{}
	eval := NewEvaluator(metrics,
		stubScorer{name: MetricContextRelevance, err: errors.New("judge unavailable")},
		stubScorer{name: MetricAnswerRelevance, score: 0.8},
	)

	scores, records := eval.Evaluate(context.Background(), Input{Question: "q", Response: "r"})

	assert.Equal(t, map[string]float64{MetricAnswerRelevance: 0.8}, scores)
	_, computed := scores[MetricContextRelevance]
	assert.False(t, computed)

	require.Len(t, records, 1)
	assert.Equal(t, MetricAnswerRelevance, records[0].Name)
	assert.Equal(t, 0.8, records[0].Score)
	assert.False(t, records[0].Timestamp.IsZero())

	assert.Equal(t, []string{MetricContextRelevance}, metrics.failures)
	assert.Equal(t, map[string]float64{MetricAnswerRelevance: 0.8}, metrics.scores)
}

func TestEvaluator_ZeroScoreIsKept(t *testing.T) {
	eval := NewEvaluator(nil, stubScorer{name: MetricContextRelevance, score: 0})

	scores, records := eval.Evaluate(context.Background(), Input{})

	score, computed := scores[MetricContextRelevance]
	assert.True(t, computed)
	assert.Zero(t, score)
	assert.Len(t, records, 1)
}

func TestEvaluator_RunsScorersConcurrently(t *testing.T) {
	eval := NewEvaluator(nil,
		stubScorer{name: "a", score: 1, delay: 100 * time.Millisecond},
		stubScorer{name: "b", score: 1, delay: 100 * time.Millisecond},
		stubScorer{name: "c", score: 1, delay: 100 * time.Millisecond},
	)

	start := time.Now()
	scores, _ := eval.Evaluate(context.Background(), Input{})

	assert.Len(t, scores, 3)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestEvaluator_SharedTimestamp(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	eval := NewEvaluator(nil, stubScorer{name: "a", score: 1}, stubScorer{name: "b", score: 0.5})
	eval.now = func() time.Time { return fixed }

	_, records := eval.Evaluate(context.Background(), Input{})

	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, fixed, rec.Timestamp)
	}
}

func TestEvaluator_NoScorers(t *testing.T) {
	scores, records := NewEvaluator(nil).Evaluate(context.Background(), Input{})
	assert.Empty(t, scores)
	assert.Empty(t, records)
}

