package document

import (
	"context"

	"github.com/futig/issue-assistant/internal/entity"
)

type DocumentUsecase interface {
	Extract(ctx context.Context, filename string, content []byte) (*entity.ExtractedDocument, error)
	ListDocuments(ctx context.Context) ([]entity.StageDocument, error)
}
