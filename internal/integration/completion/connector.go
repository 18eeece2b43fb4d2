package completion

import (
	"context"
	"fmt"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/integration/statement"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	completeStatement = "SELECT SNOWFLAKE.CORTEX.COMPLETE(?, ?) AS response"
	responseColumn    = "RESPONSE"
)

type StatementExecutor interface {
	Execute(ctx context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error)
}

// Connector invokes the hosted completion function as a SQL statement
type Connector struct {
	executor StatementExecutor
	logger   *zap.Logger
}

func NewConnector(executor StatementExecutor, logger *zap.Logger) *Connector {
	return &Connector{
		executor: executor,
		logger:   logger,
	}
}

// Complete returns the raw rendering of the first result row, Row(RESPONSE=...).
// Cleanup is left to the caller.
func (c *Connector) Complete(ctx context.Context, model, prompt string) (string, error) {
	ctxzap.Debug(ctx, "invoking completion",
		zap.String("model", model),
		zap.Int("prompt_length", len(prompt)),
	)

	rows, err := c.executor.Execute(ctx, completeStatement, statement.Text(model), statement.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if len(rows) == 0 || rows[0].IsNull(responseColumn) {
		return "", fmt.Errorf("complete: %w", entity.ErrEmptyCompletion)
	}

	return rows[0].String(), nil
}
