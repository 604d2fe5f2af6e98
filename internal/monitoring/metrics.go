// Package monitoring exposes prometheus metrics for the engine and mirrors
// the latest values into an in-process Monitor.
package monitoring

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"homebase/internal/events"
	"homebase/internal/models"
	"homebase/internal/schedule"
	"homebase/internal/verification"
)

// Collector owns the prometheus registry and the monitor snapshot
type Collector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
	monitor  *Monitor
}

// NewCollector creates a collector with its own registry
func NewCollector(monitor *Monitor) *Collector {
	if monitor == nil {
		monitor = NewMonitor()
	}
	registry := prometheus.NewRegistry()

	dueTasks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homebase_due_tasks",
		Help: "Tasks coming due at the last scheduler tick",
	})
	pendingVerifications := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homebase_pending_verifications",
		Help: "Profiles awaiting item verification at the last scheduler tick",
	})
	historyEntries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebase_history_entries_total",
			Help: "History entries appended",
		},
		[]string{"status"},
	)
	checklistOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebase_checklist_outcomes_total",
			Help: "Checklist completion outcomes",
		},
		[]string{"outcome"},
	)
	verificationActions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebase_verification_actions_total",
			Help: "Verification confirms and updates",
		},
		[]string{"action"},
	)
	suggestionFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homebase_suggestion_failures_total",
			Help: "Failed suggestion generator calls",
		},
		[]string{"kind"},
	)
	schedulerTicks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homebase_scheduler_ticks_total",
		Help: "Completed scheduler ticks",
	})

	metrics := map[string]prometheus.Collector{
		"due_tasks":             dueTasks,
		"pending_verifications": pendingVerifications,
		"history_entries":       historyEntries,
		"checklist_outcomes":    checklistOutcomes,
		"verification_actions":  verificationActions,
		"suggestion_failures":   suggestionFailures,
		"scheduler_ticks":       schedulerTicks,
	}
	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &Collector{
		registry: registry,
		metrics:  metrics,
		monitor:  monitor,
	}
}

// Monitor returns the in-process snapshot
func (c *Collector) Monitor() *Monitor {
	return c.monitor
}

// Registry exposes the prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordTick records the outcome of one scheduler tick
func (c *Collector) RecordTick(r schedule.Report) {
	c.metrics["due_tasks"].(prometheus.Gauge).Set(float64(len(r.Due)))
	c.metrics["pending_verifications"].(prometheus.Gauge).Set(float64(len(r.Pending)))
	c.metrics["scheduler_ticks"].(prometheus.Counter).Inc()

	c.monitor.RecordMetric("due_tasks", len(r.Due))
	c.monitor.RecordMetric("pending_verifications", len(r.Pending))
	c.monitor.RecordMetric("last_tick", r.At)
	c.monitor.IncrementMetric("scheduler_ticks")
}

// RecordHistory counts an appended history entry
func (c *Collector) RecordHistory(status models.ItemStatus) {
	c.metrics["history_entries"].(*prometheus.CounterVec).WithLabelValues(string(status)).Inc()
	c.monitor.IncrementMetric("history_entries")
}

// RecordChecklistOutcome counts a checklist transition such as "completed"
// or "misplaced_confirmed"
func (c *Collector) RecordChecklistOutcome(outcome string) {
	c.metrics["checklist_outcomes"].(*prometheus.CounterVec).WithLabelValues(outcome).Inc()
	c.monitor.IncrementMetric("checklist_" + outcome)
}

// RecordVerification counts a verification "confirm" or "update"
func (c *Collector) RecordVerification(action string) {
	c.metrics["verification_actions"].(*prometheus.CounterVec).WithLabelValues(action).Inc()
	c.monitor.IncrementMetric("verification_" + action)
}

// RecordSuggestionFailure counts a failed "reminders", "agenda" or "predict" call
func (c *Collector) RecordSuggestionFailure(kind string) {
	c.metrics["suggestion_failures"].(*prometheus.CounterVec).WithLabelValues(kind).Inc()
	c.monitor.IncrementMetric("suggestion_failures")
}

// Consume updates metrics from bus events until ctx is done or the channel
// closes
func (c *Collector) Consume(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.observe(ev)
		}
	}
}

func (c *Collector) observe(ev events.Event) {
	switch ev.Kind {
	case events.KindTasksDue:
		if r, ok := ev.Payload.(schedule.Report); ok {
			c.RecordTick(r)
		}
	case events.KindHistoryAppended:
		if e, ok := ev.Payload.(models.HistoryEntry); ok {
			c.RecordHistory(e.Status)
		}
	case events.KindVerificationPending:
		if checks, ok := ev.Payload.([]verification.Check); ok {
			c.monitor.RecordMetric("pending_profiles", len(checks))
		}
	}
}
