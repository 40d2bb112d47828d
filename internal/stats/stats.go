package stats

import (
	"sort"
	"sync"
	"time"
)

// Run describes one completed analysis.
type Run struct {
	Duration  time.Duration
	Documents int
	Sections  int // Ranked sections returned
	Skipped   int // Documents left out for lack of text
}

type sample struct {
	at  time.Time
	run Run
}

// Snapshot aggregates the runs inside the rolling window.
type Snapshot struct {
	Runs      int     `json:"runs"`
	Failures  int     `json:"failures"`
	Documents int     `json:"documents"`
	Skipped   int     `json:"skipped_documents"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
	WindowSec int64   `json:"window_sec"`
}

// RunStats tracks recent analysis runs within a rolling window.
type RunStats struct {
	mu       sync.Mutex
	samples  []sample
	failures []time.Time
	maxAge   time.Duration
	now      func() time.Time
}

func New(maxAge time.Duration) *RunStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &RunStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds a successful run.
func (s *RunStats) Record(r Run) {
	if r.Duration < 0 {
		r.Duration = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, run: r})
}

// RecordFailure counts a run that ended in an error.
func (s *RunStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.failures = append(s.failures, now)
}

func (s *RunStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := Snapshot{
		Failures:  len(s.failures),
		WindowSec: int64(s.maxAge / time.Second),
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		ms := sm.run.Duration.Milliseconds()
		values = append(values, ms)
		sum += ms
		snap.Documents += sm.run.Documents
		snap.Skipped += sm.run.Skipped
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Runs = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *RunStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]

	kept := s.failures[:0]
	for _, at := range s.failures {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	s.failures = kept
}

// percentile interpolates linearly between the closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
