package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "issue_assistant"

// Pipeline stages timed by the collector
const (
	StageSummarize = "summarize"
	StageRetrieve  = "retrieve"
	StageComplete  = "complete"
	StageEvaluate  = "evaluate"
)

// Collector holds the assistant's Prometheus metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	turnsTotal      *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	feedbackScores  *prometheus.HistogramVec
	scorerFailures  *prometheus.CounterVec
	storeFailures   prometheus.Counter
	documentsParsed *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Question/response turns by outcome",
			},
			[]string{"outcome"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage", "status"},
		),
		feedbackScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "feedback_score",
				Help:      "Feedback scores by metric",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"metric"},
		),
		scorerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scorer_failures_total",
				Help:      "Feedback scorer failures by metric",
			},
			[]string{"metric"},
		),
		storeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_store_failures_total",
				Help:      "Feedback records that could not be persisted",
			},
		),
		documentsParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_parsed_total",
				Help:      "Uploaded documents by type and status",
			},
			[]string{"type", "status"},
		),
	}
}

// TrackConversations exposes count as the active conversations gauge
func (c *Collector) TrackConversations(count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations_active",
			Help:      "Conversations held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

func (c *Collector) RecordTurn(outcome string) {
	c.turnsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records the duration since start; use as defer c.ObserveStage(stage, time.Now(), &err)
func (c *Collector) ObserveStage(stage string, start time.Time, err *error) {
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	c.stageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}

func (c *Collector) RecordScore(metric string, score float64) {
	c.feedbackScores.WithLabelValues(metric).Observe(score)
}

func (c *Collector) RecordScorerFailure(metric string) {
	c.scorerFailures.WithLabelValues(metric).Inc()
}

func (c *Collector) RecordStoreFailure() {
	c.storeFailures.Inc()
}

func (c *Collector) RecordDocument(fileType, status string) {
	c.documentsParsed.WithLabelValues(fileType, status).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
