package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EnsureStartsOnce(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewCacheStorage(time.Hour))

	calls := 0
	start := func(context.Context) (string, error) {
		calls++
		return "conv-1", nil
	}

	id, err := m.Ensure(ctx, 42, start)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)

	id, err = m.Ensure(ctx, 42, start)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)
	assert.Equal(t, 1, calls)
}

func TestManager_ChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewCacheStorage(time.Hour))

	n := 0
	start := func(context.Context) (string, error) {
		n++
		return []string{"a", "b"}[n-1], nil
	}

	a, err := m.Ensure(ctx, 1, start)
	require.NoError(t, err)
	b, err := m.Ensure(ctx, 2, start)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestManager_RebindAndUnbind(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewCacheStorage(0))

	_, err := m.ConversationID(ctx, 7)
	assert.ErrorIs(t, err, ErrChatNotBound)

	_, err = m.Rebind(ctx, 7, func(context.Context) (string, error) { return "first", nil })
	require.NoError(t, err)
	id, err := m.Rebind(ctx, 7, func(context.Context) (string, error) { return "second", nil })
	require.NoError(t, err)
	assert.Equal(t, "second", id)

	require.NoError(t, m.Unbind(ctx, 7))
	_, err = m.ConversationID(ctx, 7)
	assert.ErrorIs(t, err, ErrChatNotBound)
}

func TestManager_StartFailure(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(NewCacheStorage(time.Hour))

	_, err := m.Ensure(context.Background(), 3, func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	_, err = m.ConversationID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrChatNotBound)
}
