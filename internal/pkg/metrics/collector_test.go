package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector()

	c.RecordTurn("success")
	c.RecordTurn("success")
	c.RecordTurn("error")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.turnsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.turnsTotal.WithLabelValues("error")))

	c.RecordScorerFailure("context_relevance")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scorerFailures.WithLabelValues("context_relevance")))

	c.RecordStoreFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storeFailures))
}

func TestCollector_ObserveStage(t *testing.T) {
	c := NewCollector()

	var ok error
	c.ObserveStage(StageRetrieve, time.Now(), &ok)
	failed := errors.New("boom")
	c.ObserveStage(StageRetrieve, time.Now(), &failed)
	c.ObserveStage(StageComplete, time.Now(), nil)

	assert.Equal(t, 3, testutil.CollectAndCount(c.stageDuration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordScore("context_relevance", 0.5)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "issue_assistant_feedback_score")
}

func TestCollector_TrackConversations(t *testing.T) {
	c := NewCollector()
	active := 2
	c.TrackConversations(func() int { return active })

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "issue_assistant_conversations_active 2")

	active = 5
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "issue_assistant_conversations_active 5")
}
