package search

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers from a small built-in troubleshooting corpus by keyword overlap
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

var mockCorpus = []struct {
	keywords []string
	answer   string
}{
	{[]string{"crash", "launch", "start"}, "Clear the application cache and reinstall the latest version. If the crash persists, collect the startup log and attach it to the ticket."},
	{[]string{"login", "password", "sign"}, "Reset the password from the sign-in page and make sure the system clock is in sync, since expired tokens are rejected."},
	{[]string{"slow", "performance", "lag"}, "Check available disk space and disable background sync while working with large projects."},
	{[]string{"export", "pdf", "report"}, "Exports are generated in the background. Large reports can take a few minutes to appear in the downloads panel."},
}

func (m *MockConnector) Search(ctx context.Context, query string, limit int) ([]string, error) {
	ctxzap.Info(ctx, "[MOCK] querying search service",
		zap.String("query", query),
		zap.Int("limit", limit),
	)

	lowered := strings.ToLower(query)
	var answers []string
	for _, entry := range mockCorpus {
		if len(answers) >= limit {
			break
		}
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				answers = append(answers, entry.answer)
				break
			}
		}
	}

	return answers, nil
}
