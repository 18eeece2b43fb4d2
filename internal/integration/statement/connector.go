package statement

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/integration/common"
	pkghttp "github.com/futig/issue-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector executes parameterized statements through the warehouse SQL API
type Connector struct {
	config    config.SnowflakeConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.SnowflakeConfig,
	source pkghttp.TokenSource,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, source, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Execute runs sql with positional "?" bindings and returns the result rows.
// Only synchronous results are accepted; anything but the success code is an error.
func (c *Connector) Execute(ctx context.Context, sql string, bindings ...entity.StatementBinding) ([]entity.Row, error) {
	req := &entity.StatementRequest{
		Statement: sql,
		Timeout:   c.config.StatementTTL,
		Database:  c.config.Database,
		Schema:    c.config.Schema,
		Warehouse: c.config.Warehouse,
		Role:      c.config.Role,
	}
	if len(bindings) > 0 {
		req.Bindings = make(map[string]entity.StatementBinding, len(bindings))
		for i, b := range bindings {
			req.Bindings[fmt.Sprintf("%d", i+1)] = b
		}
	}

	var resp entity.StatementResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.StatementPath, req, &resp,
		pkghttp.WithQuery("async", "false"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStatementFailed, err)
	}

	if resp.Code != entity.StatementSuccessCode {
		return nil, fmt.Errorf("%w: code %s: %s", entity.ErrStatementFailed, resp.Code, resp.Message)
	}

	rows := resp.Rows()
	ctxzap.Debug(ctx, "statement executed",
		zap.String("statement_handle", resp.StatementHandle),
		zap.Int("row_count", len(rows)),
	)

	return rows, nil
}

func Text(value string) entity.StatementBinding {
	return entity.StatementBinding{Type: entity.BindingText, Value: value}
}

func Real(value float64) entity.StatementBinding {
	return entity.StatementBinding{Type: entity.BindingReal, Value: fmt.Sprintf("%g", value)}
}

// Timestamp binds a TIMESTAMP_NTZ given as nanoseconds since the epoch
func Timestamp(nanos int64) entity.StatementBinding {
	return entity.StatementBinding{Type: entity.BindingTimestampNTZ, Value: fmt.Sprintf("%d", nanos)}
}
