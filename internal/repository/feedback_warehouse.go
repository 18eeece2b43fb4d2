package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/integration/statement"
	pkgRetry "github.com/futig/issue-assistant/internal/pkg/retry"
)

type StatementExecutor interface {
	Execute(ctx context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error)
}

var _ FeedbackRepository = &FeedbackWarehouse{}

// FeedbackWarehouse writes feedback rows into a warehouse table through the SQL API
type FeedbackWarehouse struct {
	executor StatementExecutor
	table    string
	retry    pkgRetry.RetryConfig
}

func NewFeedbackWarehouse(executor StatementExecutor, table string, retryCfg pkgRetry.RetryConfig) *FeedbackWarehouse {
	return &FeedbackWarehouse{
		executor: executor,
		table:    table,
		retry:    retryCfg,
	}
}

// Save writes all records in one multi-row INSERT, so a batch lands whole or not at
// all. A retry after a response lost in transit may write the batch twice.
func (r *FeedbackWarehouse) Save(ctx context.Context, records []entity.FeedbackRecord) error {
	if len(records) == 0 {
		return nil
	}

	sql, bindings := r.insertStatement(records)
	opts := append(r.retry.ToRetryOptions(), retry.Context(ctx))
	err := retry.Do(func() error {
		_, err := r.executor.Execute(ctx, sql, bindings...)
		return err
	}, opts...)
	if err != nil {
		return fmt.Errorf("save %d feedback records: %w", len(records), err)
	}

	return nil
}

func (r *FeedbackWarehouse) insertStatement(records []entity.FeedbackRecord) (string, []entity.StatementBinding) {
	placeholders := make([]string, 0, len(records))
	bindings := make([]entity.StatementBinding, 0, 3*len(records))
	for _, rec := range records {
		placeholders = append(placeholders, "(?, ?, ?)")
		bindings = append(bindings,
			statement.Timestamp(rec.Timestamp.UTC().UnixNano()),
			statement.Text(rec.Name),
			statement.Real(rec.Score),
		)
	}

	sql := fmt.Sprintf("INSERT INTO %s (TIMESTAMP, FEEDBACK_NAME, SCORE) VALUES %s",
		r.table, strings.Join(placeholders, ", "))
	return sql, bindings
}
