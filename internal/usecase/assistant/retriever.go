package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Retriever fetches context passages with a single search call per question
type Retriever struct {
	search SearchConnector
	limit  int
}

func NewRetriever(search SearchConnector, limit int) *Retriever {
	if limit < 1 {
		limit = 1
	}
	return &Retriever{
		search: search,
		limit:  limit,
	}
}

// Retrieve returns the non-blank passages and their space-joined text.
// No results is not an error: the context is then empty.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]entity.RetrievedPassage, string, error) {
	answers, err := r.search.Search(ctx, question, r.limit)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", entity.ErrSearchFailed, err)
	}

	passages := make([]entity.RetrievedPassage, 0, len(answers))
	texts := make([]string, 0, len(answers))
	for _, answer := range answers {
		text := strings.TrimSpace(answer)
		if text == "" {
			continue
		}
		passages = append(passages, entity.RetrievedPassage{Text: text})
		texts = append(texts, text)
	}

	ctxzap.Debug(ctx, "context retrieved",
		zap.Int("passage_count", len(passages)),
		zap.Int("limit", r.limit),
	)

	return passages, strings.Join(texts, " "), nil
}
