package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/issue-assistant/internal/config"
	"github.com/futig/issue-assistant/internal/entity"
	pkghttp "github.com/futig/issue-assistant/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sfCfg := config.SnowflakeConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
		Database:         "SUPPORT",
		Schema:           "DATA",
	}
	return NewConnector(sfCfg, config.SearchConfig{Service: "question_search"}, pkghttp.StaticToken{Value: "t"}, zap.NewNop())
}

func TestConnector_Search(t *testing.T) {
	calls := 0
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v2/databases/SUPPORT/schemas/DATA/cortex-search-services/question_search:query", r.URL.Path)

		var req entity.CortexSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "App crashes on launch", req.Query)
		assert.Equal(t, []string{"answer"}, req.Columns)
		assert.Empty(t, req.Filter)
		assert.Equal(t, 3, req.Limit)

		_, _ = w.Write([]byte(`{"results":[{"answer":"Reinstall"},{"answer":"Clear cache"},{"other":"x"}],"request_id":"r1"}`))
	})

	answers, err := conn.Search(context.Background(), "App crashes on launch", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reinstall", "Clear cache", ""}, answers)
	assert.Equal(t, 1, calls)
}

func TestConnector_Search_FilterIsEmptyObject(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, `{}`, string(raw["filter"]))
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	answers, err := conn.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestConnector_Search_Error(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := conn.Search(context.Background(), "q", 1)
	require.Error(t, err)
	assert.True(t, pkghttp.IsStatus(err, http.StatusServiceUnavailable))
}

func TestMockConnector_Search(t *testing.T) {
	mock := NewMockConnector(zap.NewNop())

	answers, err := mock.Search(context.Background(), "App crashes on launch", 1)
	require.NoError(t, err)
	require.Len(t, answers, 1)

	answers, err = mock.Search(context.Background(), "quantum entanglement", 3)
	require.NoError(t, err)
	assert.Empty(t, answers)
}
