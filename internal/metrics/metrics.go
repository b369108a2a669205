// Package metrics exposes history activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/trellis/internal/history"
)

// Collector counts history events and tracks stack depths. It implements
// history.Observer.
//
// Each Collector has its own registry, so tests and multiple projects can
// create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	Events    *prometheus.CounterVec
	UndoDepth prometheus.Gauge
	RedoDepth prometheus.Gauge
	Saves     *prometheus.CounterVec
}

// NewCollector creates a collector whose metrics carry namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "events_total",
				Help:      "History stack events by type and command kind",
			},
			[]string{"event", "kind"},
		),
		UndoDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "undo_depth",
				Help:      "Entries on the undo stack",
			},
		),
		RedoDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "redo_depth",
				Help:      "Entries on the redo stack",
			},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "history",
				Name:      "saves_total",
				Help:      "History blob writes by outcome",
			},
			[]string{"status"},
		),
	}
	c.registry.MustRegister(c.Events, c.UndoDepth, c.RedoDepth, c.Saves)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe implements history.Observer.
func (c *Collector) Observe(e history.Event) {
	kind := string(e.Command.Kind)
	if kind == "" {
		kind = "none"
	}
	c.Events.WithLabelValues(string(e.Type), kind).Inc()
	c.UndoDepth.Set(float64(e.UndoLen))
	c.RedoDepth.Set(float64(e.RedoLen))
}

// ObserveSave records the outcome of one history write.
func (c *Collector) ObserveSave(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Saves.WithLabelValues(status).Inc()
}

// WriteText writes every metric in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

var _ history.Observer = (*Collector)(nil)
