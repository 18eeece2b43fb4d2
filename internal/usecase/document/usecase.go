package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DocumentUsecase turns uploaded PDF and text files into plain text and lists the
// documents available in the warehouse stage
type DocumentUsecase struct {
	executor  StatementExecutor
	stage     string
	validator Validator
	metrics   Metrics
	logger    *zap.Logger
}

func NewUsecase(
	executor StatementExecutor,
	stage string,
	validator Validator,
	metrics Metrics,
	logger *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		executor:  executor,
		stage:     stage,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Extract returns the document text. Failures never touch conversation state.
func (uc *DocumentUsecase) Extract(ctx context.Context, filename string, content []byte) (*entity.ExtractedDocument, error) {
	if err := uc.validator.ValidateDocument(filename, int64(len(content))); err != nil {
		uc.record(filename, err)
		return nil, err
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(content)
	case ".txt":
		text, err = extractTXT(content)
	default:
		err = entity.ErrUnsupportedFileType
	}

	if err == nil && text == "" {
		err = fmt.Errorf("%w: no text found", entity.ErrFileParse)
	}

	uc.record(filename, err)
	if err != nil {
		ctxzap.Warn(ctx, "document extraction failed", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	ctxzap.Info(ctx, "document extracted",
		zap.String("filename", filename),
		zap.Int("text_length", len(text)),
	)

	return &entity.ExtractedDocument{Filename: filename, Text: text}, nil
}

// ListDocuments lists the files of the documents stage
func (uc *DocumentUsecase) ListDocuments(ctx context.Context) ([]entity.StageDocument, error) {
	rows, err := uc.executor.Execute(ctx, "LS "+uc.stage)
	if err != nil {
		return nil, fmt.Errorf("list stage %s: %w", uc.stage, err)
	}

	docs := make([]entity.StageDocument, 0, len(rows))
	for _, row := range rows {
		name, ok := row.Get("name")
		if !ok || name == "" {
			continue
		}

		doc := entity.StageDocument{Name: name}
		if size, ok := row.Get("size"); ok {
			doc.Size, _ = strconv.ParseInt(size, 10, 64)
		}
		docs = append(docs, doc)
	}

	ctxzap.Debug(ctx, "stage documents listed", zap.Int("count", len(docs)))
	return docs, nil
}

func (uc *DocumentUsecase) record(filename string, err error) {
	if uc.metrics == nil {
		return
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if fileType == "" {
		fileType = "none"
	}

	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrUnsupportedFileType):
		status = "unsupported"
		// keep label cardinality bounded
		fileType = "other"
	default:
		status = "failed"
	}
	uc.metrics.RecordDocument(fileType, status)
}
