package document

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
)

type StatementExecutor interface {
	Execute(ctx context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error)
}

type Validator interface {
	ValidateDocument(filename string, size int64) error
}

type Metrics interface {
	RecordDocument(fileType, status string)
}
