package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestFeedback(t *testing.T) {
	assert.Equal(t, MsgNoFeedback, Feedback(nil, 10))

	ts1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ts2 := ts1.Add(time.Minute)
	records := []entity.FeedbackRecord{
		{Timestamp: ts1, Name: "Context Relevance", Score: 0.5},
		{Timestamp: ts2, Name: "Context Relevance", Score: 1},
		{Timestamp: ts2, Name: "Answer Relevance", Score: 2.0 / 3},
	}

	out := Feedback(records, 2)
	assert.NotContains(t, out, "10:00:00")
	assert.Contains(t, out, "2024-05-01 10:01:00")
	assert.Contains(t, out, "• Context Relevance: 1.00")
	assert.Contains(t, out, "• Answer Relevance: 0.67")
	assert.Equal(t, 1, strings.Count(out, "10:01:00"))
}

func TestScores(t *testing.T) {
	assert.Empty(t, Scores(nil))
	assert.Equal(t, "📊 Answer Relevance 0.33 · Context Relevance 1.00",
		Scores(map[string]float64{"Context Relevance": 1, "Answer Relevance": 1.0 / 3}))
}

func TestDocuments(t *testing.T) {
	assert.Equal(t, MsgNoDocuments, Documents(nil))
	out := Documents([]entity.StageDocument{{Name: "docs/install.pdf", Size: 1024}})
	assert.Contains(t, out, "docs/install.pdf (1024 bytes)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	out := Truncate(strings.Repeat("я", 20), 10)
	assert.Equal(t, 10, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrTimeout, ClassifyError(fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
	assert.Equal(t, ErrTurnInProgress, ClassifyError(entity.ErrTurnInProgress))
	assert.Equal(t, ErrUnsupportedFile, ClassifyError(fmt.Errorf("%w: .exe", entity.ErrUnsupportedFileType)))
	assert.Equal(t, ErrFileParse, ClassifyError(entity.ErrFileParse))
	assert.Equal(t, ErrGeneric, ClassifyError(errors.New("boom")))
}
