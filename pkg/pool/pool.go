// Package pool holds the validated provider credentials and the advisory
// per-kind health flags shared by every dispatch.
package pool

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/zen-systems/askflow/pkg/provider"
)

// ErrNoProviders marks a pool in which every configured credential failed
// validation. Constructing an agent over such a pool is a configuration
// error, not a runtime one.
var ErrNoProviders = errors.New("no working providers: every configured credential failed validation")

// Credential is one validated client. Immutable after pool construction.
type Credential struct {
	Index  int
	Label  string
	Client provider.Provider
}

// Factory constructs an unvalidated client for a kind and raw API key.
type Factory func(ctx context.Context, kind provider.Kind, apiKey string) (provider.Provider, error)

type entry struct {
	creds   []Credential
	healthy bool
}

// Pool maps provider kinds to their validated credentials. Credentials are
// immutable after New; the health flags are the only mutable state.
type Pool struct {
	mu      sync.Mutex
	entries map[provider.Kind]*entry
	kinds   []provider.Kind
	logger  *log.Logger
}

// New probes every raw key and keeps the survivors, in input order. Keys
// whose client cannot be built or whose probe fails are dropped with a
// logged reason. A kind may end up with zero credentials; that is a
// degraded pool, not an error.
func New(ctx context.Context, keysByKind map[provider.Kind][]string, factory Factory, logger *log.Logger) *Pool {
	if factory == nil {
		factory = provider.New
	}
	if logger == nil {
		logger = log.Default()
	}

	kinds := make([]provider.Kind, 0, len(keysByKind))
	for kind := range keysByKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	p := &Pool{
		entries: make(map[provider.Kind]*entry, len(kinds)),
		kinds:   kinds,
		logger:  logger,
	}

	for _, kind := range kinds {
		e := &entry{healthy: true}
		for i, key := range keysByKind[kind] {
			client, err := factory(ctx, kind, key)
			if err != nil {
				logger.Warn("dropping credential: client construction failed",
					"kind", kind, "key", i+1, "err", err)
				continue
			}
			if err := client.Probe(ctx); err != nil {
				logger.Warn("dropping credential: probe failed",
					"kind", kind, "key", i+1, "err", err)
				continue
			}
			e.creds = append(e.creds, Credential{
				Index:  len(e.creds),
				Label:  redact(key),
				Client: client,
			})
			logger.Info("credential validated", "kind", kind, "key", i+1)
		}
		p.entries[kind] = e
	}
	return p
}

// Kinds returns the configured kinds in stable order.
func (p *Pool) Kinds() []provider.Kind {
	out := make([]provider.Kind, len(p.kinds))
	copy(out, p.kinds)
	return out
}

// Credentials returns the validated credentials for a kind, in priority
// order.
func (p *Pool) Credentials(kind provider.Kind) []Credential {
	e, ok := p.entries[kind]
	if !ok {
		return nil
	}
	out := make([]Credential, len(e.creds))
	copy(out, e.creds)
	return out
}

// CredentialCount returns the number of validated credentials for a kind.
func (p *Pool) CredentialCount(kind provider.Kind) int {
	e, ok := p.entries[kind]
	if !ok {
		return 0
	}
	return len(e.creds)
}

// IsEmpty reports whether every kind has zero credentials.
func (p *Pool) IsEmpty() bool {
	for _, e := range p.entries {
		if len(e.creds) > 0 {
			return false
		}
	}
	return true
}

// IsHealthy reports the advisory health flag for a kind. The flag orders
// dispatch preference; it never hard-gates an attempt on its own.
func (p *Pool) IsHealthy(kind provider.Kind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[kind]
	return ok && e.healthy
}

// MarkHealthy sets the health flag for a kind.
func (p *Pool) MarkHealthy(kind provider.Kind) {
	p.setHealth(kind, true)
}

// MarkUnhealthy clears the health flag for a kind.
func (p *Pool) MarkUnhealthy(kind provider.Kind) {
	p.setHealth(kind, false)
}

func (p *Pool) setHealth(kind provider.Kind, healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[kind]; ok {
		e.healthy = healthy
	}
}

func redact(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "…" + key[len(key)-4:]
}
