package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConversationStarter creates a conversation and returns its id
type ConversationStarter func(ctx context.Context) (string, error)

// Manager resolves the conversation of a chat, starting one when needed
type Manager struct {
	storage Storage
}

func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage}
}

// ConversationID returns the conversation bound to chatID
func (m *Manager) ConversationID(ctx context.Context, chatID int64) (string, error) {
	binding, err := m.storage.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	return binding.ConversationID, nil
}

// Ensure returns the bound conversation or binds a new one from start
func (m *Manager) Ensure(ctx context.Context, chatID int64, start ConversationStarter) (string, error) {
	id, err := m.ConversationID(ctx, chatID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrChatNotBound) {
		return "", err
	}
	return m.Rebind(ctx, chatID, start)
}

// Rebind replaces the chat binding with a freshly started conversation
func (m *Manager) Rebind(ctx context.Context, chatID int64, start ConversationStarter) (string, error) {
	id, err := start(ctx)
	if err != nil {
		return "", fmt.Errorf("start conversation: %w", err)
	}

	if err := m.storage.Set(ctx, &ChatBinding{ChatID: chatID, ConversationID: id, BoundAt: time.Now()}); err != nil {
		return "", fmt.Errorf("bind chat %d: %w", chatID, err)
	}
	return id, nil
}

func (m *Manager) Unbind(ctx context.Context, chatID int64) error {
	return m.storage.Delete(ctx, chatID)
}
