package statement

import (
	"context"
	"strings"

	"github.com/futig/issue-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - statement stub answering stage listings, accepting everything else
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

var mockStageFiles = [][2]string{
	{"docs/installation_guide.pdf", "184320"},
	{"docs/known_issues.txt", "20480"},
	{"docs/release_notes.pdf", "96256"},
}

func (m *MockConnector) Execute(ctx context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error) {
	ctxzap.Info(ctx, "[MOCK] executing statement",
		zap.String("statement", sql),
		zap.Int("binding_count", len(bindings)),
	)

	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "LS ") {
		return nil, nil
	}

	columns := []string{"name", "size"}
	rows := make([]entity.Row, 0, len(mockStageFiles))
	for _, f := range mockStageFiles {
		name, size := f[0], f[1]
		rows = append(rows, entity.Row{Columns: columns, Values: []*string{&name, &size}})
	}
	return rows, nil
}
