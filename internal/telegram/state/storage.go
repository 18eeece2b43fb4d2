package state

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrChatNotBound = errors.New("chat has no conversation")

// ChatBinding maps a Telegram chat to its assistant conversation
type ChatBinding struct {
	ChatID         int64
	ConversationID string
	BoundAt        time.Time
}

// Storage persists chat bindings
type Storage interface {
	Get(ctx context.Context, chatID int64) (*ChatBinding, error)
	Set(ctx context.Context, binding *ChatBinding) error
	Delete(ctx context.Context, chatID int64) error
}

// CacheStorage keeps bindings in memory. Entries expire after ttl of inactivity,
// matching the lifetime of the conversations they point to.
type CacheStorage struct {
	cache *cache.Cache
}

var _ Storage = &CacheStorage{}

func NewCacheStorage(ttl time.Duration) *CacheStorage {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &CacheStorage{cache: cache.New(ttl, 10*time.Minute)}
}

func (s *CacheStorage) Get(_ context.Context, chatID int64) (*ChatBinding, error) {
	key := strconv.FormatInt(chatID, 10)
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrChatNotBound
	}
	binding := v.(*ChatBinding)
	s.cache.SetDefault(key, binding)
	return binding, nil
}

func (s *CacheStorage) Set(_ context.Context, binding *ChatBinding) error {
	s.cache.SetDefault(strconv.FormatInt(binding.ChatID, 10), binding)
	return nil
}

func (s *CacheStorage) Delete(_ context.Context, chatID int64) error {
	s.cache.Delete(strconv.FormatInt(chatID, 10))
	return nil
}
