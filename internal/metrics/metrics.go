// Package metrics exposes run results as Prometheus metrics. The process
// is a one-shot job, so metrics are pushed to a Pushgateway rather than
// scraped.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/caesar-terminal/listwatch/internal/runner"
)

type Metrics struct {
	reg           *prometheus.Registry
	events        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	instruments   *prometheus.GaugeVec
	tradable      *prometheus.GaugeVec
	persisted     prometheus.Gauge
	lastRun       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listwatch_events_total",
			Help: "Change events detected, by market and kind.",
		}, []string{"market", "kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listwatch_notifications_total",
			Help: "Alert deliveries, by result.",
		}, []string{"result"}),
		instruments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "listwatch_instruments",
			Help: "Instruments in the latest snapshot.",
		}, []string{"market"}),
		tradable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "listwatch_tradable_instruments",
			Help: "Instruments open for trading in the latest snapshot.",
		}, []string{"market"}),
		persisted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "listwatch_snapshots_persisted",
			Help: "1 if the last run persisted its snapshots, else 0.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "listwatch_last_run_timestamp_seconds",
			Help: "Start time of the last run.",
		}),
	}
	m.reg.MustRegister(m.events, m.notifications, m.instruments, m.tradable, m.persisted, m.lastRun)
	return m
}

// Registry returns the registry holding every listwatch metric.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Record folds a run report into the metrics.
func (m *Metrics) Record(rep runner.Report) {
	for _, mr := range rep.Markets {
		market := string(mr.Market)
		for kind, n := range mr.Events {
			m.events.WithLabelValues(market, kind.String()).Add(float64(n))
		}
		m.instruments.WithLabelValues(market).Set(float64(mr.Instruments))
		m.tradable.WithLabelValues(market).Set(float64(mr.Tradable))
	}
	m.notifications.WithLabelValues("sent").Add(float64(rep.Sent))
	m.notifications.WithLabelValues("failed").Add(float64(rep.Failed))
	if rep.Persisted {
		m.persisted.Set(1)
	} else {
		m.persisted.Set(0)
	}
	m.lastRun.Set(float64(rep.Started.Unix()))
}

// Push sends every metric to the Pushgateway at url under job, replacing
// the job's previous group.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	return nil
}
