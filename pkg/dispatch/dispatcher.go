// Package dispatch sends generation requests across the provider pool,
// falling back through kinds and credentials until one answers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zen-systems/askflow/pkg/pool"
	"github.com/zen-systems/askflow/pkg/provider"
)

// ErrExhausted marks a dispatch in which every kind's every credential
// failed. It is returned as a value, never raised.
var ErrExhausted = errors.New("all providers exhausted")

const defaultAttemptTimeout = 60 * time.Second

// ProviderID identifies the credential that produced a response.
type ProviderID struct {
	Kind  provider.Kind
	Index int
}

// String renders the ID with a 1-based credential number, e.g. "groq-2".
func (id ProviderID) String() string {
	if id.Kind == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s-%d", id.Kind, id.Index+1)
}

// Result is a successful dispatch: the generated text and its origin.
type Result struct {
	Text     string
	Provider ProviderID
}

// Dispatcher tries provider kinds in policy order and credentials in
// registration order, returning the first non-empty response.
type Dispatcher struct {
	pool    *pool.Pool
	order   OrderPolicy
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOrderPolicy overrides the kind ordering policy.
func WithOrderPolicy(p OrderPolicy) Option {
	return func(d *Dispatcher) { d.order = p }
}

// WithTimeout sets the per-attempt timeout. A timeout is an ordinary
// credential failure, never a dispatch abort.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithLogger sets the dispatch logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Dispatcher over the pool, shuffling kinds by default.
func New(p *pool.Pool, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool:    p,
		order:   NewShuffleOrder(),
		timeout: defaultAttemptTimeout,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the request against the pool and returns the first
// successful, non-empty response. On full exhaustion every attempted kind
// is marked unhealthy and ErrExhausted is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req provider.Request) (Result, error) {
	candidates := d.candidates()
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: no credentials available", ErrExhausted)
	}

	for _, kind := range d.order.Order(candidates) {
		for _, cred := range d.pool.Credentials(kind) {
			id := ProviderID{Kind: kind, Index: cred.Index}
			text, err := d.attempt(ctx, cred, req)
			if err != nil {
				d.logger.Warn("credential failed", "provider", id, "err", err)
				continue
			}
			d.pool.MarkHealthy(kind)
			return Result{Text: text, Provider: id}, nil
		}
	}

	for _, kind := range candidates {
		d.pool.MarkUnhealthy(kind)
	}
	return Result{}, ErrExhausted
}

func (d *Dispatcher) attempt(ctx context.Context, cred pool.Credential, req provider.Request) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := cred.Client.Generate(attemptCtx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &provider.Error{Kind: cred.Client.Kind(), Empty: true}
	}
	return text, nil
}

// candidates returns the non-empty kinds whose health flag is set. When
// every flagged kind is unhealthy the full non-empty set is used instead:
// health orders preference, it does not gate the last resort.
func (d *Dispatcher) candidates() []provider.Kind {
	var healthy, nonEmpty []provider.Kind
	for _, kind := range d.pool.Kinds() {
		if d.pool.CredentialCount(kind) == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, kind)
		if d.pool.IsHealthy(kind) {
			healthy = append(healthy, kind)
		}
	}
	if len(healthy) > 0 {
		return healthy
	}
	return nonEmpty
}
