package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExecutor struct {
	sql      string
	bindings []entity.StatementBinding
	rows     []entity.Row
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error) {
	f.sql = sql
	f.bindings = bindings
	return f.rows, f.err
}

func strPtr(s string) *string { return &s }

func TestConnector_Complete(t *testing.T) {
	exec := &fakeExecutor{rows: []entity.Row{
		{Columns: []string{"RESPONSE"}, Values: []*string{strPtr("Restart the app.")}},
		{Columns: []string{"RESPONSE"}, Values: []*string{strPtr("ignored")}},
	}}
	conn := NewConnector(exec, zap.NewNop())

	raw, err := conn.Complete(context.Background(), "mistral-large", "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Row(RESPONSE=Restart the app.)", raw)

	assert.Equal(t, "SELECT SNOWFLAKE.CORTEX.COMPLETE(?, ?) AS response", exec.sql)
	require.Len(t, exec.bindings, 2)
	assert.Equal(t, "mistral-large", exec.bindings[0].Value)
	assert.Equal(t, "prompt text", exec.bindings[1].Value)
	assert.Equal(t, entity.BindingText, exec.bindings[1].Type)
}

func TestConnector_Complete_Errors(t *testing.T) {
	conn := NewConnector(&fakeExecutor{}, zap.NewNop())
	_, err := conn.Complete(context.Background(), "m", "p")
	assert.ErrorIs(t, err, entity.ErrEmptyCompletion)

	conn = NewConnector(&fakeExecutor{rows: []entity.Row{
		{Columns: []string{"RESPONSE"}, Values: []*string{nil}},
	}}, zap.NewNop())
	_, err = conn.Complete(context.Background(), "m", "p")
	assert.ErrorIs(t, err, entity.ErrEmptyCompletion)

	boom := errors.New("boom")
	conn = NewConnector(&fakeExecutor{err: boom}, zap.NewNop())
	_, err = conn.Complete(context.Background(), "m", "p")
	assert.ErrorIs(t, err, boom)
}

func TestMockConnector_Complete(t *testing.T) {
	mock := NewMockConnector(zap.NewNop())

	raw, err := mock.Complete(context.Background(), "mistral-large", "...<question>Why?</question>")
	require.NoError(t, err)
	assert.Contains(t, raw, "Row(RESPONSE=")
	assert.Contains(t, raw, "Why?")

	raw, err = mock.Complete(context.Background(), "mistral-large", "rate it <rating>")
	require.NoError(t, err)
	assert.Equal(t, "Row(RESPONSE=2)", raw)
}
