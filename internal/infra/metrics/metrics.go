// Package metrics provides Prometheus metrics for gantry.
// Counters, gauges and histograms for generation, the live board and the
// HTTP surface. Generation metrics follow the daemon's live board only;
// register ObserveBoard as one of its observers.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gantry-dev/gantry/internal/domain"
)

// ─── Generation ─────────────────────────────────────────────────────────────

// Regenerations counts completed regenerate passes.
var Regenerations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gantry",
	Name:      "regenerations_total",
	Help:      "Total regenerate passes of the live board.",
})

// TasksGenerated counts synthesized task records.
var TasksGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gantry",
	Name:      "tasks_generated_total",
	Help:      "Total task records synthesized for the live board.",
})

// GenerationLatency tracks the duration of one regenerate pass.
var GenerationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "gantry",
	Name:      "generation_seconds",
	Help:      "Duration of a regenerate pass in seconds.",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
})

// ─── Board ──────────────────────────────────────────────────────────────────

// BoardTasks tracks the size of the most recent batch.
var BoardTasks = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "gantry",
	Name:      "board_tasks",
	Help:      "Number of tasks in the most recent batch.",
})

// TasksByStatus tracks the status mix of the most recent batch.
var TasksByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "gantry",
	Name:      "tasks_by_status",
	Help:      "Tasks per status in the most recent batch.",
}, []string{"status"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gantry",
	Name:      "http_requests_total",
	Help:      "Total HTTP requests by route and status code.",
}, []string{"route", "code"})

// EventSubscribers tracks connected SSE clients.
var EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "gantry",
	Name:      "event_subscribers",
	Help:      "Number of connected batch event streams.",
})

// ObserveBoard records one regenerate pass of the live board. Its
// signature matches gantt.Observer.
func ObserveBoard(b domain.Batch) {
	Regenerations.Inc()
	TasksGenerated.Add(float64(len(b.Tasks)))
	GenerationLatency.Observe(b.Elapsed.Seconds())
	BoardTasks.Set(float64(len(b.Tasks)))

	counts := make(map[domain.TaskStatus]int, len(domain.Statuses))
	for _, t := range b.Tasks {
		counts[t.Status]++
	}
	for _, s := range domain.Statuses {
		TasksByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route string, code int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
