package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - completion stub for local runs without a warehouse
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, model, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] invoking completion",
		zap.String("model", model),
		zap.Int("prompt_length", len(prompt)),
	)

	// judge prompts expect a bare rating
	if strings.Contains(prompt, "<rating>") {
		return "Row(RESPONSE=2)", nil
	}

	question := between(prompt, "<question>", "</question>")
	response := fmt.Sprintf("[%s] Here is what I found about: %s\\n\\nTry restarting the application first.", model, question)
	return "Row(RESPONSE=" + response + ")", nil
}

func between(s, open, closing string) string {
	start := strings.LastIndex(s, open)
	if start < 0 {
		return strings.TrimSpace(s)
	}
	rest := s[start+len(open):]
	if end := strings.Index(rest, closing); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
