package app

import (
	"testing"
	"time"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest(10 * time.Millisecond)
	m.RecordRequest(30 * time.Millisecond)
	m.RecordRequest(20 * time.Millisecond)

	snap := m.Snapshot()
	if snap.RequestCount != 3 {
		t.Errorf("RequestCount = %d, expected 3", snap.RequestCount)
	}
	if snap.AvgRequestNs != (20 * time.Millisecond).Nanoseconds() {
		t.Errorf("AvgRequestNs = %d, expected 20ms", snap.AvgRequestNs)
	}
	if snap.MinRequestNs != (10 * time.Millisecond).Nanoseconds() {
		t.Errorf("MinRequestNs = %d, expected 10ms", snap.MinRequestNs)
	}
	if snap.MaxRequestNs != (30 * time.Millisecond).Nanoseconds() {
		t.Errorf("MaxRequestNs = %d, expected 30ms", snap.MaxRequestNs)
	}
	if snap.LastRequestNs != (20 * time.Millisecond).Nanoseconds() {
		t.Errorf("LastRequestNs = %d, expected 20ms", snap.LastRequestNs)
	}
}

func TestMetrics_SnapshotEmpty(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()

	if snap.RequestCount != 0 {
		t.Errorf("RequestCount = %d, expected 0", snap.RequestCount)
	}
	if snap.MinRequestNs != 0 {
		t.Errorf("MinRequestNs = %d, expected 0 when no requests recorded", snap.MinRequestNs)
	}
	if snap.AvgRequestNs != 0 {
		t.Errorf("AvgRequestNs = %d, expected 0", snap.AvgRequestNs)
	}
	if snap.Uptime < 0 {
		t.Errorf("Uptime = %v, expected non-negative", snap.Uptime)
	}
}

func TestMetrics_Lifecycle(t *testing.T) {
	m := NewMetrics()

	m.RecordRender()
	m.RecordRender()
	m.RecordClear()
	m.RecordCommit(2, 10)
	m.RecordReload()

	snap := m.Snapshot()
	if snap.Renders != 2 {
		t.Errorf("Renders = %d, expected 2", snap.Renders)
	}
	if snap.Clears != 1 {
		t.Errorf("Clears = %d, expected 1", snap.Clears)
	}
	if snap.Commits != 1 {
		t.Errorf("Commits = %d, expected 1", snap.Commits)
	}
	if snap.CommittedLines != 2 {
		t.Errorf("CommittedLines = %d, expected 2", snap.CommittedLines)
	}
	if snap.CommittedBytes != 10 {
		t.Errorf("CommittedBytes = %d, expected 10", snap.CommittedBytes)
	}
	if snap.Reloads != 1 {
		t.Errorf("Reloads = %d, expected 1", snap.Reloads)
	}
	if got := snap.AcceptRate(); got != 50 {
		t.Errorf("AcceptRate() = %v, expected 50", got)
	}
}

func TestMetricsSnapshot_AcceptRateNoRenders(t *testing.T) {
	if got := (MetricsSnapshot{}).AcceptRate(); got != 0 {
		t.Errorf("AcceptRate() = %v, expected 0 without renders", got)
	}
}

func TestMetricsSnapshot_AvgRequestMs(t *testing.T) {
	snap := MetricsSnapshot{AvgRequestNs: 2_500_000}
	if got := snap.AvgRequestMs(); got != 2.5 {
		t.Errorf("AvgRequestMs() = %v, expected 2.5", got)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest(time.Millisecond)
	m.RecordRender()
	m.RecordCommit(1, 1)
	m.RecordReload()

	m.Reset()

	snap := m.Snapshot()
	if snap.RequestCount != 0 || snap.Renders != 0 || snap.Commits != 0 || snap.Reloads != 0 {
		t.Errorf("expected zeroed snapshot after Reset, got %+v", snap)
	}
	if snap.MinRequestNs != 0 {
		t.Errorf("MinRequestNs = %d after Reset, expected 0", snap.MinRequestNs)
	}
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(10 * time.Millisecond)

	if timer.Elapsed() <= 0 {
		t.Error("expected positive elapsed time")
	}
	if timer.ElapsedMs() <= 0 {
		t.Error("expected positive elapsed milliseconds")
	}

	first := timer.Stop()
	if first <= 0 {
		t.Error("expected Stop() to return elapsed time")
	}
	if timer.Elapsed() > first {
		t.Error("expected Stop() to reset the timer")
	}
}
