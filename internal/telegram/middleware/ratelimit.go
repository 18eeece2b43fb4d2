package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Notifier sends a message back to the user. *tgbotapi.BotAPI implements it.
type Notifier interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type userLimit struct {
	limiter       *rate.Limiter
	lastSeen      time.Time
	warningsSent  int
	lastWarningAt time.Time
}

// RateLimiterMiddleware applies a token bucket per user
type RateLimiterMiddleware struct {
	mu              sync.Mutex
	limits          map[int64]*userLimit
	limit           rate.Limit
	burst           int
	warningInterval time.Duration
	idleTimeout     time.Duration
	now             func() time.Time
	logger          *zap.Logger
	notifier        Notifier
}

func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	notifier Notifier,
) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits:          make(map[int64]*userLimit),
		limit:           rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:           burstSize,
		warningInterval: 30 * time.Second,
		idleTimeout:     time.Hour,
		now:             time.Now,
		logger:          logger,
		notifier:        notifier,
	}
}

// Handle drops updates from users over their limit
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID := updateIdentity(update)
	if userID == 0 {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limits[userID] = limit
	}
	limit.lastSeen = now

	if limit.limiter.AllowN(now, 1) {
		limit.warningsSent = 0
		return true
	}

	if now.Sub(limit.lastWarningAt) > rl.warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		rl.sendRateLimitWarning(chatID, limit.warningsSent)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendRateLimitWarning(chatID int64, warningCount int) {
	text := "⚠️ Too many requests. Please wait a moment."
	if warningCount >= 3 {
		text = "🛑 You are sending messages too often. Please wait a minute."
	}

	if _, err := rl.notifier.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// Cleanup forgets users idle for longer than the idle timeout
func (rl *RateLimiterMiddleware) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, limit := range rl.limits {
		if now.Sub(limit.lastSeen) > rl.idleTimeout {
			delete(rl.limits, userID)
		}
	}
}

// RunCleanup calls Cleanup every interval until stop is closed
func (rl *RateLimiterMiddleware) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-stop:
			return
		}
	}
}

func updateIdentity(update tgbotapi.Update) (userID, chatID int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID
	}
	return 0, 0
}
