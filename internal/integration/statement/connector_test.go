package statement

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

	cfg := config.SnowflakeConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
		Database:         "SUPPORT",
		Schema:           "DATA",
		Warehouse:        "COMPUTE_WH",
		StatementPath:    "/api/v2/statements",
		StatementTTL:     60,
	}
	return NewConnector(cfg, pkghttp.StaticToken{Value: "secret", Type: "PROGRAMMATIC_ACCESS_TOKEN"}, zap.NewNop())
}

func TestConnector_Execute(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/statements", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("async"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "PROGRAMMATIC_ACCESS_TOKEN", r.Header.Get("X-Snowflake-Authorization-Token-Type"))

		var req entity.StatementRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SELECT ? AS a, ? AS b", req.Statement)
		assert.Equal(t, "SUPPORT", req.Database)
		assert.Equal(t, "DATA", req.Schema)
		assert.Equal(t, "COMPUTE_WH", req.Warehouse)
		assert.Equal(t, 60, req.Timeout)
		assert.Equal(t, entity.StatementBinding{Type: "TEXT", Value: "x"}, req.Bindings["1"])
		assert.Equal(t, entity.StatementBinding{Type: "REAL", Value: "0.5"}, req.Bindings["2"])

		_, _ = w.Write([]byte(`{
			"code": "090001",
			"statementHandle": "h-1",
			"resultSetMetaData": {"numRows": 1, "rowType": [{"name": "A"}, {"name": "B"}]},
			"data": [["x", null]]
		}`))
	})

	rows, err := conn.Execute(context.Background(), "SELECT ? AS a, ? AS b", Text("x"), Real(0.5))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	value, ok := rows[0].Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", value)
	assert.Equal(t, "Row(A=x, B=None)", rows[0].String())
}

func TestConnector_Execute_NoBindings(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, present := raw["bindings"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"code":"090001","resultSetMetaData":{"rowType":[{"name":"name"}]},"data":[]}`))
	})

	rows, err := conn.Execute(context.Background(), "LS @docs")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConnector_Execute_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":"002003","message":"Object does not exist"}`))
		})

		_, err := conn.Execute(context.Background(), "SELECT 1")
		require.ErrorIs(t, err, entity.ErrStatementFailed)
		assert.True(t, pkghttp.IsStatus(err, http.StatusUnprocessableEntity))
		assert.Contains(t, err.Error(), "Object does not exist")
	})

	t.Run("async handle instead of result", func(t *testing.T) {
		conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"code":"333334","message":"Asynchronous execution in progress."}`))
		})

		_, err := conn.Execute(context.Background(), "SELECT 1")
		require.ErrorIs(t, err, entity.ErrStatementFailed)
	})
}
