// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package dispatch

import (
	"sync"

	"github.com/juju/collections/set"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/hadoop-relations/internal/hook"
)

const metricsNamespace = "hadoop_relations"

// Collector is a prometheus.Collector that collects metrics about
// dispatched relation events and the flags they leave behind.
type Collector struct {
	events    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	flagState *prometheus.GaugeVec

	mu    sync.Mutex
	known set.Strings
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "The number of relation events dispatched.",
			}, []string{"relation", "kind"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "event_failures_total",
				Help:      "The number of relation events whose handler failed.",
			}, []string{"relation", "kind"},
		),
		flagState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "flag_state",
				Help:      "Whether a derived relation flag is set (1) or not (0).",
			}, []string{"flag"},
		),
		known: set.NewStrings(),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.events.Describe(ch)
	c.failures.Describe(ch)
	c.flagState.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.events.Collect(ch)
	c.failures.Collect(ch)
	c.flagState.Collect(ch)
}

func (c *Collector) observeEvent(info hook.Info) {
	c.events.WithLabelValues(info.Relation, string(info.Kind)).Inc()
}

func (c *Collector) observeFailure(info hook.Info) {
	c.failures.WithLabelValues(info.Relation, string(info.Kind)).Inc()
}

// observeFlags records the set flags as 1 and every flag seen before but
// now cleared as 0.
func (c *Collector) observeFlags(current set.Strings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known = c.known.Union(current)
	for _, name := range c.known.Values() {
		value := 0.0
		if current.Contains(name) {
			value = 1
		}
		c.flagState.WithLabelValues(name).Set(value)
	}
}
