package assistant

import (
	"context"
	"fmt"

	"github.com/futig/issue-assistant/internal/entity"
)

// Completer validates the model against the allow-list, invokes the completion
// service and cleans its raw output
type Completer struct {
	connector CompletionConnector
	catalog   *entity.ModelCatalog
}

func NewCompleter(connector CompletionConnector, catalog *entity.ModelCatalog) *Completer {
	return &Completer{
		connector: connector,
		catalog:   catalog,
	}
}

func (c *Completer) Complete(ctx context.Context, model, prompt string) (string, error) {
	if !c.catalog.Allowed(model) {
		return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedModel, model)
	}

	raw, err := c.connector.Complete(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrCompletionFailed, err)
	}

	cleaned := CleanResponse(raw)
	if cleaned == "" {
		return "", entity.ErrEmptyCompletion
	}

	return cleaned, nil
}
