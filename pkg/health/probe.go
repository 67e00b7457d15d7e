// Package health re-validates every pool credential on demand and
// aggregates the results into an overall status level.
package health

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zen-systems/askflow/pkg/pool"
	"github.com/zen-systems/askflow/pkg/provider"
)

// Level is the aggregated pool status.
type Level string

const (
	// LevelExcellent means every kind has at least one healthy credential.
	LevelExcellent Level = "Excellent"
	// LevelGood means at least one kind has a healthy credential while
	// another has none.
	LevelGood Level = "Good"
	// LevelCritical means no kind has any healthy credential.
	LevelCritical Level = "Critical"
)

// CredentialStatus is the diagnostic result for one credential.
type CredentialStatus struct {
	Index   int
	Label   string
	Healthy bool
	Err     string
}

// Report is the full diagnostic view: per-credential statuses plus the
// aggregated level. Recomputed on every Check, never persisted.
type Report struct {
	Credentials map[provider.Kind][]CredentialStatus
	Overall     Level
}

// HealthyCount returns how many credentials of a kind passed the probe.
func (r Report) HealthyCount(kind provider.Kind) int {
	n := 0
	for _, cs := range r.Credentials[kind] {
		if cs.Healthy {
			n++
		}
	}
	return n
}

// Probe checks credentials without touching the pool's dispatch-time
// health flags; it is a diagnostic view, independent of the advisory flag.
type Probe struct {
	pool    *pool.Pool
	timeout time.Duration
	logger  *log.Logger
}

// NewProbe creates a Probe over the pool.
func NewProbe(p *pool.Pool, timeout time.Duration, logger *log.Logger) *Probe {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Probe{pool: p, timeout: timeout, logger: logger}
}

// Check issues one minimal request per credential and aggregates.
func (p *Probe) Check(ctx context.Context) Report {
	report := Report{Credentials: make(map[provider.Kind][]CredentialStatus)}

	for _, kind := range p.pool.Kinds() {
		statuses := make([]CredentialStatus, 0, p.pool.CredentialCount(kind))
		for _, cred := range p.pool.Credentials(kind) {
			status := CredentialStatus{Index: cred.Index, Label: cred.Label, Healthy: true}
			if err := p.probeOne(ctx, cred); err != nil {
				status.Healthy = false
				status.Err = err.Error()
				p.logger.Warn("credential unhealthy", "kind", kind, "key", cred.Index+1, "err", err)
			}
			statuses = append(statuses, status)
		}
		report.Credentials[kind] = statuses
	}

	report.Overall = aggregate(report)
	return report
}

func (p *Probe) probeOne(ctx context.Context, cred pool.Credential) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return cred.Client.Probe(probeCtx)
}

func aggregate(r Report) Level {
	allHave := len(r.Credentials) > 0
	anyHave := false
	for kind := range r.Credentials {
		if r.HealthyCount(kind) > 0 {
			anyHave = true
		} else {
			allHave = false
		}
	}
	switch {
	case allHave:
		return LevelExcellent
	case anyHave:
		return LevelGood
	default:
		return LevelCritical
	}
}
