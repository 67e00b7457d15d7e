package agent

import (
	"context"
	"time"

	"github.com/zen-systems/askflow/pkg/dispatch"
)

// Document is one retrieved snippet with its source metadata. Distance is
// carried through from the retriever untouched.
type Document struct {
	Content  string
	Metadata map[string]string
	Distance float64
}

// Retriever is the external search collaborator.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}

// State is the per-question record threaded through the pipeline. It is
// created fresh for each question and owned by one invocation; nothing in
// it is shared across requests.
type State struct {
	ID             string
	Question       string
	NeedsRetrieval bool
	Documents      []Document
	Context        string

	Answer   string
	Answered bool
	Provider dispatch.ProviderID

	Reflection string
	Reflected  bool
	Relevant   bool

	RetrievalErr string
	Elapsed      time.Duration
}
