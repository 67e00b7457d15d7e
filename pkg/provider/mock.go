package provider

import (
	"context"
	"fmt"
	"sync"
)

// Mock returns scripted responses for local runs and tests.
type Mock struct {
	MockKind     Kind
	GenerateFunc func(ctx context.Context, req Request) (string, error)
	ProbeErr     error

	mu    sync.Mutex
	calls int
}

// NewMock creates a mock provider of the given kind.
func NewMock(kind Kind) *Mock {
	return &Mock{MockKind: kind}
}

// Kind returns the configured kind, or "mock" when unset.
func (m *Mock) Kind() Kind {
	if m.MockKind == "" {
		return Kind("mock")
	}
	return m.MockKind
}

// Generate returns the scripted response for the request.
func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return fmt.Sprintf("mock response:\n%s", req.FlattenedPrompt()), nil
}

// Probe returns the scripted probe result.
func (m *Mock) Probe(context.Context) error {
	return m.ProbeErr
}

// Calls returns how many times Generate has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
