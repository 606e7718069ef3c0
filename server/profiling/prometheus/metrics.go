/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/workpad-team/workpad/internal/version"
)

const namespace = "workpad"

// Metrics manages the metric information that the server measures.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion *prometheus.GaugeVec

	editsTotal           prometheus.Counter
	staleBaseEditsTotal  prometheus.Counter
	applyDurationSeconds prometheus.Histogram
	casRetriesTotal      prometheus.Counter

	joinsTotal  prometheus.Counter
	leavesTotal prometheus.Counter

	snapshotsPublishedTotal prometheus.Counter
	watchConnections        prometheus.Gauge
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{"server_version"}),
		editsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "edits_total",
			Help:      "Total number of accepted edits.",
		}),
		staleBaseEditsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "stale_base_edits_total",
			Help:      "Edits whose based-on revision was behind the document revision on arrival.",
		}),
		applyDurationSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "apply_duration_seconds",
			Help:      "The time taken to apply an edit to a document.",
		}),
		casRetriesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "cas_retries_total",
			Help:      "Store compare-and-set conflicts retried internally.",
		}),
		joinsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "joins_total",
			Help:      "Total number of participants added to active sets.",
		}),
		leavesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "leaves_total",
			Help:      "Total number of participants removed from active sets.",
		}),
		snapshotsPublishedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pubsub",
			Name:      "snapshots_published_total",
			Help:      "Total number of snapshots fanned out to subscribers.",
		}),
		watchConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pubsub",
			Name:      "watch_connections",
			Help:      "The current number of watch connections.",
		}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		"server_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddEdits adds the number of accepted edits.
func (m *Metrics) AddEdits(count int) {
	m.editsTotal.Add(float64(count))
}

// AddStaleBaseEdits counts an edit that was based on an outdated revision.
func (m *Metrics) AddStaleBaseEdits(count int) {
	m.staleBaseEditsTotal.Add(float64(count))
}

// ObserveApplySeconds records the time taken to apply one edit.
func (m *Metrics) ObserveApplySeconds(seconds float64) {
	m.applyDurationSeconds.Observe(seconds)
}

// AddCASRetries counts store conflicts that were retried internally.
func (m *Metrics) AddCASRetries(count int) {
	m.casRetriesTotal.Add(float64(count))
}

// AddJoins adds the number of participants that joined.
func (m *Metrics) AddJoins(count int) {
	m.joinsTotal.Add(float64(count))
}

// AddLeaves adds the number of participants that left.
func (m *Metrics) AddLeaves(count int) {
	m.leavesTotal.Add(float64(count))
}

// AddSnapshotsPublished adds the number of snapshots fanned out.
func (m *Metrics) AddSnapshotsPublished(count int) {
	m.snapshotsPublishedTotal.Add(float64(count))
}

// AddWatchConnections adjusts the watch connection gauge.
func (m *Metrics) AddWatchConnections(delta int) {
	m.watchConnections.Add(float64(delta))
}
