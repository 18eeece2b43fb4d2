package assistant

import (
	"context"
	"fmt"
)

const summarizeTemplate = `Summarize the following chat history and integrate the question for context:

<chat_history>%s</chat_history>
<question>%s</question>`

type TextCompleter interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Summarizer folds recent chat history into a standalone question
type Summarizer struct {
	completer TextCompleter
}

func NewSummarizer(completer TextCompleter) *Summarizer {
	return &Summarizer{completer: completer}
}

func (s *Summarizer) Summarize(ctx context.Context, model, history, question string) (string, error) {
	summary, err := s.completer.Complete(ctx, model, SummaryPrompt(history, question))
	if err != nil {
		return "", fmt.Errorf("summarize history: %w", err)
	}
	return summary, nil
}

func SummaryPrompt(history, question string) string {
	return fmt.Sprintf(summarizeTemplate, history, question)
}
