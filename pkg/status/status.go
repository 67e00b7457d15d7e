// Package status keeps in-process runtime statistics for a question
// answering session.
package status

import (
	"sync"
	"time"

	"github.com/zen-systems/askflow/pkg/agent"
	"github.com/zen-systems/askflow/pkg/health"
)

// Snapshot is a point-in-time view of the tracked statistics.
type Snapshot struct {
	StartedAt       time.Time
	Uptime          time.Duration
	Total           int
	Answered        int
	Failed          int
	AvgLatency      time.Duration
	Providers       map[string]int
	LastHealth      health.Level
	Recommendations []string
}

// Tracker accumulates per-session counters. Safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	startedAt    time.Time
	total        int
	answered     int
	failed       int
	totalLatency time.Duration
	providers    map[string]int
	lastHealth   health.Level
}

// NewTracker starts a tracker with the clock at now.
func NewTracker() *Tracker {
	return &Tracker{
		startedAt: time.Now(),
		providers: make(map[string]int),
	}
}

// Record folds one completed pipeline state into the counters.
func (t *Tracker) Record(st agent.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.totalLatency += st.Elapsed
	if st.Answered {
		t.answered++
		t.providers[st.Provider.String()]++
	} else {
		t.failed++
	}
}

// RecordHealth remembers the most recent aggregated health level.
func (t *Tracker) RecordHealth(level health.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastHealth = level
}

// Snapshot returns the current statistics with recommendations attached.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		StartedAt:  t.startedAt,
		Uptime:     time.Since(t.startedAt),
		Total:      t.total,
		Answered:   t.answered,
		Failed:     t.failed,
		Providers:  make(map[string]int, len(t.providers)),
		LastHealth: t.lastHealth,
	}
	for k, v := range t.providers {
		snap.Providers[k] = v
	}
	if t.total > 0 {
		snap.AvgLatency = t.totalLatency / time.Duration(t.total)
	}
	snap.Recommendations = recommend(snap)
	return snap
}

func recommend(s Snapshot) []string {
	var recs []string
	if s.LastHealth == health.LevelCritical {
		recs = append(recs, "All provider credentials are failing; rotate or add API keys.")
	}
	if s.Total > 0 && s.Failed*2 >= s.Total {
		recs = append(recs, "Over half of the questions this session failed; check provider quotas.")
	}
	if len(recs) == 0 {
		recs = append(recs, "System operating normally.")
	}
	return recs
}
