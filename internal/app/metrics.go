package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks request timing and suggestion lifecycle counts for a
// running application. The lifecycle counters are fed from the event
// bus, so they cover every attached session.
type Metrics struct {
	// Request timing (one request = one RPC call into the engine)
	requestCount   atomic.Uint64
	requestTotalNs atomic.Int64
	requestMinNs   atomic.Int64
	requestMaxNs   atomic.Int64
	lastRequestNs  atomic.Int64

	// Suggestion lifecycle
	renders        atomic.Uint64
	clears         atomic.Uint64
	commits        atomic.Uint64
	committedLines atomic.Uint64
	committedBytes atomic.Uint64

	// Config
	reloads atomic.Uint64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first request will be smaller
	m.requestMinNs.Store(1<<63 - 1)
	return m
}

// RecordRequest records the duration of one handled request.
func (m *Metrics) RecordRequest(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.requestCount.Add(1)
	m.requestTotalNs.Add(ns)
	m.lastRequestNs.Store(ns)

	for {
		old := m.requestMinNs.Load()
		if ns >= old {
			break
		}
		if m.requestMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	for {
		old := m.requestMaxNs.Load()
		if ns <= old {
			break
		}
		if m.requestMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRender records a rendered suggestion overlay.
func (m *Metrics) RecordRender() {
	m.renders.Add(1)
}

// RecordClear records a cleared overlay.
func (m *Metrics) RecordClear() {
	m.clears.Add(1)
}

// RecordCommit records a committed suggestion and its size.
func (m *Metrics) RecordCommit(lines, bytes int) {
	m.commits.Add(1)
	if lines > 0 {
		m.committedLines.Add(uint64(lines))
	}
	if bytes > 0 {
		m.committedBytes.Add(uint64(bytes))
	}
}

// RecordReload records a config reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	requestCount := m.requestCount.Load()

	var avgRequestNs int64
	if requestCount > 0 {
		avgRequestNs = m.requestTotalNs.Load() / int64(requestCount)
	}

	minRequestNs := m.requestMinNs.Load()
	if minRequestNs == 1<<63-1 {
		minRequestNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		RequestCount:   requestCount,
		AvgRequestNs:   avgRequestNs,
		MinRequestNs:   minRequestNs,
		MaxRequestNs:   m.requestMaxNs.Load(),
		LastRequestNs:  m.lastRequestNs.Load(),
		Renders:        m.renders.Load(),
		Clears:         m.clears.Load(),
		Commits:        m.commits.Load(),
		CommittedLines: m.committedLines.Load(),
		CommittedBytes: m.committedBytes.Load(),
		Reloads:        m.reloads.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.requestCount.Store(0)
	m.requestTotalNs.Store(0)
	m.requestMinNs.Store(1<<63 - 1)
	m.requestMaxNs.Store(0)
	m.lastRequestNs.Store(0)
	m.renders.Store(0)
	m.clears.Store(0)
	m.commits.Store(0)
	m.committedLines.Store(0)
	m.committedBytes.Store(0)
	m.reloads.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	RequestCount   uint64
	AvgRequestNs   int64
	MinRequestNs   int64
	MaxRequestNs   int64
	LastRequestNs  int64
	Renders        uint64
	Clears         uint64
	Commits        uint64
	CommittedLines uint64
	CommittedBytes uint64
	Reloads        uint64
}

// AvgRequestMs returns the average request time in milliseconds.
func (s MetricsSnapshot) AvgRequestMs() float64 {
	return float64(s.AvgRequestNs) / 1e6
}

// AcceptRate returns the percentage of rendered suggestions that were
// committed.
func (s MetricsSnapshot) AcceptRate() float64 {
	if s.Renders == 0 {
		return 0
	}
	return float64(s.Commits) / float64(s.Renders) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed().Nanoseconds()) / 1e6
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}
