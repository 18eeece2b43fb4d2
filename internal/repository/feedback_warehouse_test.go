package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	pkgRetry "github.com/futig/issue-assistant/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	failures int
	calls    []call
}

type call struct {
	sql      string
	bindings []entity.StatementBinding
}

func (e *recordingExecutor) Execute(_ context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error) {
	e.calls = append(e.calls, call{sql: sql, bindings: bindings})
	if e.failures > 0 {
		e.failures--
		return nil, errors.New("warehouse unavailable")
	}
	return nil, nil
}

var fastRetry = pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}

func TestFeedbackWarehouse_Save(t *testing.T) {
	exec := &recordingExecutor{}
	repo := NewFeedbackWarehouse(exec, "FEEDBACK_HISTORY", fastRetry)

	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := repo.Save(context.Background(), []entity.FeedbackRecord{
		{Timestamp: ts, Name: "context_relevance", Score: 0.75},
		{Timestamp: ts, Name: "answer_relevance", Score: 1},
	})
	require.NoError(t, err)

	require.Len(t, exec.calls, 1)
	batch := exec.calls[0]
	assert.Equal(t, "INSERT INTO FEEDBACK_HISTORY (TIMESTAMP, FEEDBACK_NAME, SCORE) VALUES (?, ?, ?), (?, ?, ?)", batch.sql)
	require.Len(t, batch.bindings, 6)
	assert.Equal(t, entity.BindingTimestampNTZ, batch.bindings[0].Type)
	assert.Equal(t, "context_relevance", batch.bindings[1].Value)
	assert.Equal(t, "0.75", batch.bindings[2].Value)
	assert.Equal(t, "answer_relevance", batch.bindings[4].Value)
	assert.Equal(t, "1", batch.bindings[5].Value)
}

func TestFeedbackWarehouse_SaveRetriesWholeBatch(t *testing.T) {
	exec := &recordingExecutor{failures: 1}
	repo := NewFeedbackWarehouse(exec, "FEEDBACK_HISTORY", fastRetry)

	err := repo.Save(context.Background(), []entity.FeedbackRecord{
		{Name: "context_relevance", Score: 0.5},
		{Name: "answer_relevance", Score: 0.25},
	})
	require.NoError(t, err)

	require.Len(t, exec.calls, 2)
	assert.Equal(t, exec.calls[0].sql, exec.calls[1].sql)
	assert.Equal(t, exec.calls[0].bindings, exec.calls[1].bindings)
}

func TestFeedbackWarehouse_SaveEmpty(t *testing.T) {
	exec := &recordingExecutor{}
	require.NoError(t, NewFeedbackWarehouse(exec, "FEEDBACK_HISTORY", fastRetry).Save(context.Background(), nil))
	assert.Empty(t, exec.calls)
}

func TestFeedbackWarehouse_SaveRetries(t *testing.T) {
	exec := &recordingExecutor{failures: 2}
	repo := NewFeedbackWarehouse(exec, "FEEDBACK_HISTORY", fastRetry)

	err := repo.Save(context.Background(), []entity.FeedbackRecord{{Name: "context_relevance", Score: 0.5}})
	require.NoError(t, err)
	assert.Len(t, exec.calls, 3)
}

func TestFeedbackWarehouse_SaveGivesUp(t *testing.T) {
	exec := &recordingExecutor{failures: 10}
	repo := NewFeedbackWarehouse(exec, "FEEDBACK_HISTORY", fastRetry)

	err := repo.Save(context.Background(), []entity.FeedbackRecord{{Name: "context_relevance", Score: 0.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 feedback records")
	assert.Len(t, exec.calls, 3)
}

func TestNoopFeedback(t *testing.T) {
	assert.NoError(t, NoopFeedback{}.Save(context.Background(), []entity.FeedbackRecord{{Name: "x"}}))
}
