package entity

import (
	"strings"
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnState is the conversational turn state machine.
// IDLE -> AWAITING_RESPONSE -> DISPLAYED -> IDLE, reset collapses to IDLE.
type TurnState string

const (
	TurnStateIdle             TurnState = "IDLE"
	TurnStateAwaitingResponse TurnState = "AWAITING_RESPONSE"
	TurnStateDisplayed        TurnState = "DISPLAYED"
)

// DefaultSlideWindow is the number of most recent turns used for history summarization
const DefaultSlideWindow = 7

// Turn is one user or assistant message. Turns are never mutated after creation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackRecord is a single evaluation score of a question/response pair
type FeedbackRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"feedback_name"`
	Score     float64   `json:"score"`
}

// RetrievedPassage is a text passage returned by the semantic search service
type RetrievedPassage struct {
	Text string `json:"text"`
}

// Conversation owns the state of one interactive session.
// It is passed explicitly to every pipeline call; reset clears turns only.
type Conversation struct {
	ID         string
	Model      string
	UseHistory bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	mu       sync.Mutex
	state    TurnState
	turns    []Turn
	feedback []FeedbackRecord
}

func NewConversation(id, model string, useHistory bool) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:         id,
		Model:      model,
		UseHistory: useHistory,
		CreatedAt:  now,
		UpdatedAt:  now,
		state:      TurnStateIdle,
	}
}

func (c *Conversation) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin moves IDLE -> AWAITING_RESPONSE. Only one turn may be in flight.
func (c *Conversation) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TurnStateIdle {
		return ErrTurnInProgress
	}
	c.state = TurnStateAwaitingResponse
	c.UpdatedAt = time.Now()
	return nil
}

// Complete moves AWAITING_RESPONSE -> DISPLAYED, for a response or a displayed error.
func (c *Conversation) Complete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TurnStateAwaitingResponse {
		return ErrInvalidTransition
	}
	c.state = TurnStateDisplayed
	return nil
}

// Ready moves DISPLAYED -> IDLE.
func (c *Conversation) Ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TurnStateDisplayed {
		return ErrInvalidTransition
	}
	c.state = TurnStateIdle
	c.UpdatedAt = time.Now()
	return nil
}

// Reset clears the turn sequence. Model, history flag and feedback history survive.
// A turn in flight must finish first, otherwise ErrTurnInProgress is returned.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TurnStateIdle {
		return ErrTurnInProgress
	}
	c.turns = nil
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{Role: role, Content: content, CreatedAt: time.Now()})
	c.UpdatedAt = time.Now()
}

// Turns returns a copy of the turn sequence
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// HistoryWindow joins the content of the last n turns, in order, with single spaces.
func (c *Conversation) HistoryWindow(n int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || len(c.turns) == 0 {
		return ""
	}

	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}

	contents := make([]string, 0, len(c.turns)-start)
	for _, t := range c.turns[start:] {
		contents = append(contents, t.Content)
	}
	return strings.Join(contents, " ")
}

func (c *Conversation) RecordFeedback(records ...FeedbackRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = append(c.feedback, records...)
}

// Feedback returns a copy of the feedback history
func (c *Conversation) Feedback() []FeedbackRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]FeedbackRecord, len(c.feedback))
	copy(out, c.feedback)
	return out
}

func (c *Conversation) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Model = model
	c.UpdatedAt = time.Now()
}

func (c *Conversation) SetUseHistory(use bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UseHistory = use
	c.UpdatedAt = time.Now()
}

func (c *Conversation) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.UpdatedAt
}

// Settings returns the model and history flag under the conversation lock
func (c *Conversation) Settings() (model string, useHistory bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Model, c.UseHistory
}

// TurnResult is the outcome of one question/response cycle
type TurnResult struct {
	Question string
	// Rephrased is the question after history summarization, equal to Question when disabled
	Rephrased string
	Passages  []RetrievedPassage
	Context   string
	Prompt    string
	Response  string
	Feedback  map[string]float64
	Err       error
}
