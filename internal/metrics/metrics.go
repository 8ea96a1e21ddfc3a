// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foxxtalk_logins_total",
		Help: "Login attempts by strategy (password, redirect) and result.",
	}, []string{"strategy", "result"})

	SessionsPurgedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foxxtalk_sessions_purged_total",
		Help: "Persisted sessions discarded, by reason.",
	}, []string{"reason"})

	SessionResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foxxtalk_session_resolve_duration_seconds",
		Help:    "Time spent deriving the session state for a request.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 2},
	})

	SessionSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foxxtalk_session_subscribers",
		Help: "Open session event streams.",
	})

	SectionsRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foxxtalk_sections_rendered_total",
		Help: "Landing page sections rendered, by type.",
	}, []string{"type"})

	SectionsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foxxtalk_sections_skipped_total",
		Help: "Landing page sections skipped because their type is unknown or their view failed.",
	})

	PostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foxxtalk_posts_total",
		Help: "Total number of blog posts in the database.",
	})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foxxtalk_uploads_total",
		Help: "Image uploads by result.",
	}, []string{"result"})

	AIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foxxtalk_ai_requests_total",
		Help: "AI generation requests by kind and result.",
	}, []string{"kind", "result"})

	TokensPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foxxtalk_tokens_purged_total",
		Help: "Expired bearer token records deleted by the maintenance job.",
	})
)
