package repository

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/futig/issue-assistant/internal/entity"
	pkgRetry "github.com/futig/issue-assistant/internal/pkg/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertFeedback = `INSERT INTO feedback_history (timestamp, feedback_name, score) VALUES ($1, $2, $3)`

var _ FeedbackRepository = &FeedbackPostgres{}

// FeedbackPostgres implements FeedbackRepository using PostgreSQL
type FeedbackPostgres struct {
	db    *pgxpool.Pool
	retry pkgRetry.RetryConfig
}

func NewFeedbackPostgres(db *pgxpool.Pool, retryCfg pkgRetry.RetryConfig) *FeedbackPostgres {
	return &FeedbackPostgres{
		db:    db,
		retry: retryCfg,
	}
}

// Save inserts all records in one batch, retrying the whole batch on failure
func (r *FeedbackPostgres) Save(ctx context.Context, records []entity.FeedbackRecord) error {
	if len(records) == 0 {
		return nil
	}

	opts := append(r.retry.ToRetryOptions(), retry.Context(ctx))
	err := retry.Do(func() error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(insertFeedback, rec.Timestamp, rec.Name, rec.Score)
		}
		return r.db.SendBatch(ctx, batch).Close()
	}, opts...)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	return nil
}
