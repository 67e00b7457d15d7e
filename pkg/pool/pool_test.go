package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/zen-systems/askflow/pkg/provider"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// keyFactory returns mocks whose probe outcome is scripted by the raw key:
// keys containing "bad" fail construction, keys containing "dead" fail the
// probe.
func keyFactory(ctx context.Context, kind provider.Kind, apiKey string) (provider.Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("empty key")
	}
	m := provider.NewMock(kind)
	switch {
	case apiKey == "bad":
		return nil, fmt.Errorf("construction failed")
	case apiKey == "dead":
		m.ProbeErr = errors.New("probe failed")
	}
	return m, nil
}

func TestNew_DropsFailingKeys(t *testing.T) {
	p := New(context.Background(), map[provider.Kind][]string{
		provider.KindGroq:   {"ok-1", "bad", "dead", "ok-2"},
		provider.KindGemini: {"dead"},
	}, keyFactory, quietLogger())

	if got := p.CredentialCount(provider.KindGroq); got != 2 {
		t.Errorf("groq CredentialCount = %d, want 2", got)
	}
	if got := p.CredentialCount(provider.KindGemini); got != 0 {
		t.Errorf("gemini CredentialCount = %d, want 0", got)
	}
	if p.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}

	// Survivors keep input order and get dense indices.
	creds := p.Credentials(provider.KindGroq)
	for i, cred := range creds {
		if cred.Index != i {
			t.Errorf("credential %d has Index %d", i, cred.Index)
		}
	}
}

func TestNew_EmptyPool(t *testing.T) {
	p := New(context.Background(), map[provider.Kind][]string{
		provider.KindGroq:   {"bad", "dead"},
		provider.KindGemini: {},
	}, keyFactory, quietLogger())

	if !p.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	if got := len(p.Kinds()); got != 2 {
		t.Errorf("Kinds() has %d entries, want 2 (empty kinds keep their entry)", got)
	}
}

func TestPool_HealthFlags(t *testing.T) {
	p := New(context.Background(), map[provider.Kind][]string{
		provider.KindGroq: {"ok"},
	}, keyFactory, quietLogger())

	if !p.IsHealthy(provider.KindGroq) {
		t.Error("fresh pool: IsHealthy = false, want true")
	}

	p.MarkUnhealthy(provider.KindGroq)
	if p.IsHealthy(provider.KindGroq) {
		t.Error("after MarkUnhealthy: IsHealthy = true")
	}

	p.MarkHealthy(provider.KindGroq)
	if !p.IsHealthy(provider.KindGroq) {
		t.Error("after MarkHealthy: IsHealthy = false")
	}

	// Unknown kinds are never healthy.
	if p.IsHealthy(provider.KindAnthropic) {
		t.Error("unknown kind reported healthy")
	}
}

func TestPool_KindsStableOrder(t *testing.T) {
	p := New(context.Background(), map[provider.Kind][]string{
		provider.KindGroq:      {"ok"},
		provider.KindGemini:    {"ok"},
		provider.KindAnthropic: {"ok"},
	}, keyFactory, quietLogger())

	kinds := p.Kinds()
	want := []provider.Kind{provider.KindAnthropic, provider.KindGemini, provider.KindGroq}
	if len(kinds) != len(want) {
		t.Fatalf("Kinds() = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Kinds()[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}
