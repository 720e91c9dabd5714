package llm

import (
	"testing"
	"time"
)

func TestStats_Empty(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestStats_Aggregates(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 400 {
		t.Errorf("expected min=100 max=400, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 250 {
		t.Errorf("expected avg=250, got %v", snap.AvgMs)
	}
	if snap.P50Ms != 200 {
		t.Errorf("expected p50=200, got %d", snap.P50Ms)
	}
	if snap.P95Ms != 400 {
		t.Errorf("expected p95=400, got %d", snap.P95Ms)
	}
}

func TestStats_NegativeClamped(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(-5 * time.Second)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative duration clamped to 0, got %d", snap.MinMs)
	}
}

func TestNearestRank(t *testing.T) {
	sorted := []int64{10, 20, 30, 40, 50}
	tests := []struct {
		pct  int
		want int64
	}{
		{50, 30},
		{95, 50},
		{100, 50},
		{1, 10},
	}
	for _, tc := range tests {
		if got := nearestRank(sorted, tc.pct); got != tc.want {
			t.Errorf("nearestRank(%d) = %d, want %d", tc.pct, got, tc.want)
		}
	}
}
