package status

import (
	"testing"
	"time"

	"github.com/zen-systems/askflow/pkg/agent"
	"github.com/zen-systems/askflow/pkg/dispatch"
	"github.com/zen-systems/askflow/pkg/health"
	"github.com/zen-systems/askflow/pkg/provider"
)

func TestTracker_Record(t *testing.T) {
	tr := NewTracker()

	tr.Record(agent.State{
		Answered: true,
		Provider: dispatch.ProviderID{Kind: provider.KindGroq, Index: 0},
		Elapsed:  2 * time.Second,
	})
	tr.Record(agent.State{
		Answered: true,
		Provider: dispatch.ProviderID{Kind: provider.KindGroq, Index: 0},
		Elapsed:  4 * time.Second,
	})
	tr.Record(agent.State{Answered: false, Elapsed: 3 * time.Second})

	snap := tr.Snapshot()
	if snap.Total != 3 || snap.Answered != 2 || snap.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", snap.Total, snap.Answered, snap.Failed)
	}
	if snap.AvgLatency != 3*time.Second {
		t.Errorf("AvgLatency = %s, want 3s", snap.AvgLatency)
	}
	if snap.Providers["groq-1"] != 2 {
		t.Errorf("Providers[groq-1] = %d, want 2", snap.Providers["groq-1"])
	}
}

func TestTracker_Recommendations(t *testing.T) {
	tr := NewTracker()
	snap := tr.Snapshot()
	if len(snap.Recommendations) != 1 || snap.Recommendations[0] != "System operating normally." {
		t.Errorf("fresh tracker recommendations = %v", snap.Recommendations)
	}

	tr.RecordHealth(health.LevelCritical)
	tr.Record(agent.State{Answered: false})
	snap = tr.Snapshot()
	if len(snap.Recommendations) != 2 {
		t.Errorf("degraded tracker recommendations = %v, want credential and failure notes", snap.Recommendations)
	}
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record(agent.State{
		Answered: true,
		Provider: dispatch.ProviderID{Kind: provider.KindGemini, Index: 0},
	})

	snap := tr.Snapshot()
	snap.Providers["gemini-1"] = 99

	if tr.Snapshot().Providers["gemini-1"] != 1 {
		t.Error("Snapshot() shares the providers map with the tracker")
	}
}
