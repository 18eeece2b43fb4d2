package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/futig/issue-assistant/internal/entity"
)

// MaxMessageLength is the Telegram limit for a single text message
const MaxMessageLength = 4096

const (
	MsgWelcome = `👋 Hi! I answer questions about software issues using the knowledge base.

Just type your question. Commands:
/reset – clear the chat history
/model – choose the completion model
/history – use or ignore previous messages
/feedback – show evaluation scores
/docs – list available documents

Send a PDF or TXT file and I will extract its text.`

	MsgResetDone       = "🔄 Chat history cleared."
	MsgChooseModel     = "🤖 Current model: %s\nChoose a model:"
	MsgModelSelected   = "✅ Model set to %s"
	MsgHistoryState    = "🧠 Chat history is %s."
	MsgNoFeedback      = "No feedback scores yet. Ask a question first."
	MsgNoDocuments     = "📂 The document stage is empty."
	MsgDocumentsHeader = "📂 Available documents:"
	MsgExtractedHeader = "📄 Text extracted from %s:\n\n"

	ErrGeneric          = "❌ Something went wrong. Please try again."
	ErrTimeout          = "⏱ The request took too long. Please try again."
	ErrNetworkIssue     = "🌐 Network problem. Please try again later."
	ErrTurnInProgress   = "⏳ I am still answering your previous question."
	ErrUnsupportedModel = "❌ Unknown model %q. Use /model to see the options."
	ErrHistoryUsage     = "Usage: /history on|off"
	ErrUnknownCommand   = "❌ Unknown command. Use /start to see what I can do."
	ErrAnswerFailed     = "⚠️ I could not answer that: %s"
	ErrUnsupportedFile  = "❌ Only PDF and TXT files are supported."
	ErrFileTooLarge     = "❌ The file is too large."
	ErrFileParse        = "❌ Failed to process file."
	ErrDocumentsFailed  = "❌ Could not list documents right now."
)

// HistoryLabel renders the history flag
func HistoryLabel(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// Feedback renders the latest evaluation, grouped by timestamp, newest last
func Feedback(records []entity.FeedbackRecord, limit int) string {
	if len(records) == 0 {
		return MsgNoFeedback
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	var b strings.Builder
	b.WriteString("📊 Feedback")
	var last time.Time
	for _, r := range records {
		if !r.Timestamp.Equal(last) {
			fmt.Fprintf(&b, "\n\n%s", r.Timestamp.Format("2006-01-02 15:04:05"))
			last = r.Timestamp
		}
		fmt.Fprintf(&b, "\n• %s: %.2f", r.Name, r.Score)
	}
	return b.String()
}

// Scores renders the scores of a single turn in a stable order
func Scores(scores map[string]float64) string {
	if len(scores) == 0 {
		return ""
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %.2f", name, scores[name]))
	}
	return "📊 " + strings.Join(parts, " · ")
}

// Documents renders the stage listing
func Documents(docs []entity.StageDocument) string {
	if len(docs) == 0 {
		return MsgNoDocuments
	}
	var b strings.Builder
	b.WriteString(MsgDocumentsHeader)
	for _, d := range docs {
		fmt.Fprintf(&b, "\n• %s (%d bytes)", d.Name, d.Size)
	}
	return b.String()
}

// Truncate cuts text to fit in one Telegram message
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}

// ClassifyError returns a user-facing message for err
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, entity.ErrTurnInProgress):
		return ErrTurnInProgress
	case errors.Is(err, entity.ErrUnsupportedFileType):
		return ErrUnsupportedFile
	case errors.Is(err, entity.ErrFileTooLarge):
		return ErrFileTooLarge
	case errors.Is(err, entity.ErrFileParse):
		return ErrFileParse
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	return ErrGeneric
}
