package main

import (
	"net/http"

	"github.com/meikuraledutech/graphdoc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	commits  *prometheus.CounterVec
	failures *prometheus.CounterVec
	registry *prometheus.Registry
}

func newMetrics() *metrics {
	m := &metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphdoc",
			Name:      "commits_total",
			Help:      "Committed graph actions by action name.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphdoc",
			Name:      "failed_actions_total",
			Help:      "Rejected graph actions by action name and HTTP status.",
		}, []string{"action", "status"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.commits, m.failures)
	return m
}

func (m *metrics) onCommit(rec graphdoc.CommitRecord) {
	m.commits.WithLabelValues(rec.Op.String()).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
