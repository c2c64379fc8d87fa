package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter MetricType = "counter"
	Timer   MetricType = "timer"
)

// Metric represents a single metric with its metadata
type Metric struct {
	Name        string            `json:"name"`
	Type        MetricType        `json:"type"`
	Value       float64           `json:"value"`
	Labels      map[string]string `json:"labels,omitempty"`
	Description string            `json:"description,omitempty"`
	LastUpdate  time.Time         `json:"last_update"`
}

// TimerMetric stores timing information
type TimerMetric struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum_ms"`
	Min     float64 `json:"min_ms"`
	Max     float64 `json:"max_ms"`
	Average float64 `json:"avg_ms"`
}

// Registry manages all metrics in memory
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*Metric
	timers    map[string]*TimerMetric
	startTime time.Time
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Metric),
		timers:    make(map[string]*TimerMetric),
		startTime: time.Now(),
	}
}

var defaultRegistry = NewRegistry()

// GetRegistry returns the process-wide registry
func GetRegistry() *Registry {
	return defaultRegistry
}

func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, labels[k])
	}
	return b.String()
}

// IncrementCounter adds one to a counter on the default registry
func IncrementCounter(name string, labels map[string]string, description string) {
	defaultRegistry.AddToCounter(name, 1, labels, description)
}

// AddToCounter adds an arbitrary delta to a counter
func (r *Registry) AddToCounter(name string, delta float64, labels map[string]string, description string) {
	key := metricKey(name, labels)

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.counters[key]
	if !ok {
		m = &Metric{
			Name:        name,
			Type:        Counter,
			Labels:      labels,
			Description: description,
		}
		r.counters[key] = m
	}
	m.Value += delta
	m.LastUpdate = time.Now()
}

// RecordTimer records an observed duration on the default registry
func RecordTimer(name string, duration time.Duration, labels map[string]string) {
	defaultRegistry.RecordTimer(name, duration, labels)
}

// RecordTimer records an observed duration
func (r *Registry) RecordTimer(name string, duration time.Duration, labels map[string]string) {
	key := metricKey(name, labels)
	ms := float64(duration.Microseconds()) / 1000.0

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[key]
	if !ok {
		t = &TimerMetric{Min: ms, Max: ms}
		r.timers[key] = t
	}
	t.Count++
	t.Sum += ms
	if ms < t.Min {
		t.Min = ms
	}
	if ms > t.Max {
		t.Max = ms
	}
	t.Average = t.Sum / float64(t.Count)
}

// Snapshot is the exported view of the registry
type Snapshot struct {
	UptimeSeconds float64                 `json:"uptime_seconds"`
	Counters      map[string]*Metric      `json:"counters"`
	Timers        map[string]*TimerMetric `json:"timers"`
}

// Export returns a copy of all metrics for serving on /metrics
func (r *Registry) Export() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(r.startTime).Seconds(),
		Counters:      make(map[string]*Metric, len(r.counters)),
		Timers:        make(map[string]*TimerMetric, len(r.timers)),
	}
	for k, v := range r.counters {
		copied := *v
		snap.Counters[k] = &copied
	}
	for k, v := range r.timers {
		copied := *v
		snap.Timers[k] = &copied
	}
	return snap
}
