package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	"github.com/futig/issue-assistant/internal/integration/common"
	pkghttp "github.com/futig/issue-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector queries a Cortex Search service over REST
type Connector struct {
	endpoint  string
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	sfCfg config.SnowflakeConfig,
	cfg config.SearchConfig,
	source pkghttp.TokenSource,
	logger *zap.Logger,
) *Connector {
	endpoint := fmt.Sprintf("/api/v2/databases/%s/schemas/%s/cortex-search-services/%s:query",
		url.PathEscape(sfCfg.Database),
		url.PathEscape(sfCfg.Schema),
		url.PathEscape(cfg.Service),
	)

	return &Connector{
		endpoint:  endpoint,
		connector: common.NewBaseConnector(sfCfg.HTTPClientConfig, source, logger),
		logger:    logger,
	}
}

// Search returns the answer column of up to limit rows, in service order
func (c *Connector) Search(ctx context.Context, query string, limit int) ([]string, error) {
	req := &entity.CortexSearchRequest{
		Query:   query,
		Columns: []string{entity.SearchColumnAnswer},
		Filter:  map[string]any{},
		Limit:   limit,
	}

	var resp entity.CortexSearchResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("query search service: %w", err)
	}

	answers := make([]string, 0, len(resp.Results))
	for _, row := range resp.Results {
		answers = append(answers, columnText(row, entity.SearchColumnAnswer))
	}

	ctxzap.Debug(ctx, "search service returned results",
		zap.Int("result_count", len(answers)),
		zap.String("request_id", resp.RequestID),
	)

	return answers, nil
}

func columnText(row map[string]any, column string) string {
	switch v := row[column].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
