package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetriever_Retrieve(t *testing.T) {
	search := &fakeSearch{answers: []string{" Reinstall ", "", "Clear cache"}}
	r := NewRetriever(search, 3)

	passages, text, err := r.Retrieve(context.Background(), "App crashes")
	require.NoError(t, err)

	assert.Equal(t, []entity.RetrievedPassage{{Text: "Reinstall"}, {Text: "Clear cache"}}, passages)
	assert.Equal(t, "Reinstall Clear cache", text)
	assert.Equal(t, []string{"App crashes"}, search.queries)
	assert.Equal(t, []int{3}, search.limits)
}

func TestRetriever_NoResults(t *testing.T) {
	r := NewRetriever(&fakeSearch{}, 0)

	passages, text, err := r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, passages)
	assert.Empty(t, text)
}

func TestRetriever_Failure(t *testing.T) {
	boom := errors.New("boom")
	r := NewRetriever(&fakeSearch{err: boom}, 1)

	_, _, err := r.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, entity.ErrSearchFailed)
	assert.ErrorIs(t, err, boom)
}

func TestCompleter_Complete(t *testing.T) {
	completion := &fakeCompletion{answer: "Line one.\nLine two."}
	c := NewCompleter(completion, entity.NewModelCatalog(nil))

	out, err := c.Complete(context.Background(), "mistral-large", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Line one. Line two.", out)

	_, err = c.Complete(context.Background(), "gpt-4", "prompt")
	assert.ErrorIs(t, err, entity.ErrUnsupportedModel)
	assert.Len(t, completion.prompts, 1)
}

func TestSummarizer_UsesFixedTemplate(t *testing.T) {
	completion := &fakeCompletion{summary: "Combined question"}
	s := NewSummarizer(NewCompleter(completion, entity.NewModelCatalog(nil)))

	out, err := s.Summarize(context.Background(), "mistral-large", "a b c", "why?")
	require.NoError(t, err)
	assert.Equal(t, "Combined question", out)
	assert.Equal(t, "Summarize the following chat history and integrate the question for context:\n\n<chat_history>a b c</chat_history>\n<question>why?</question>", completion.prompts[0])
}
