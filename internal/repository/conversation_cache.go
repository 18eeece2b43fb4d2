package repository

import (
	"context"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/patrickmn/go-cache"
)

// ConversationRepository defines the interface for conversation state storage
type ConversationRepository interface {
	Save(ctx context.Context, conversation *entity.Conversation) error
	Get(ctx context.Context, id string) (*entity.Conversation, error)
}

var _ ConversationRepository = &ConversationCache{}

// ConversationCache keeps conversations in memory and evicts them after ttl of inactivity
type ConversationCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewConversationCache(ttl time.Duration) *ConversationCache {
	return &ConversationCache{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

func (r *ConversationCache) Save(_ context.Context, conversation *entity.Conversation) error {
	r.cache.Set(conversation.ID, conversation, r.ttl)
	return nil
}

// Get returns the conversation and extends its lifetime
func (r *ConversationCache) Get(_ context.Context, id string) (*entity.Conversation, error) {
	value, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrConversationNotFound
	}

	conversation := value.(*entity.Conversation)
	r.cache.Set(id, conversation, r.ttl)
	return conversation, nil
}

// Count reports live conversations, expired ones included until the next janitor run
func (r *ConversationCache) Count() int {
	return r.cache.ItemCount()
}
