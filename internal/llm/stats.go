package llm

import (
	"sort"
	"sync"
	"time"
)

// StatsSnapshot is a point-in-time aggregate of generation latencies.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms int64   `json:"p50_ms"`
	P95Ms int64   `json:"p95_ms"`
}

// Stats tracks recent LLM call latencies within a rolling window.
type Stats struct {
	mu      sync.Mutex
	maxAge  time.Duration
	times   []time.Time
	latency []int64
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

// Record adds one latency sample.
func (s *Stats) Record(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	s.times = append(s.times, now)
	s.latency = append(s.latency, ms)
}

// Snapshot aggregates the samples still inside the window.
func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)

	n := len(s.latency)
	if n == 0 {
		return StatsSnapshot{}
	}

	sorted := make([]int64, n)
	copy(sorted, s.latency)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return StatsSnapshot{
		Count: n,
		MinMs: sorted[0],
		MaxMs: sorted[n-1],
		AvgMs: float64(sum) / float64(n),
		P50Ms: nearestRank(sorted, 50),
		P95Ms: nearestRank(sorted, 95),
	}
}

// prune drops samples older than the window. Caller holds the lock.
func (s *Stats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := 0
	for i, t := range s.times {
		if !t.Before(cutoff) {
			keep = i
			break
		}
		keep = i + 1
	}
	s.times = s.times[keep:]
	s.latency = s.latency[keep:]
}

// nearestRank returns the pct-th percentile by the nearest-rank method.
func nearestRank(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (pct*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
