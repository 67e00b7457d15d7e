// Package agent drives a question through the four-stage pipeline:
// Plan, Retrieve, Answer, Reflect.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/zen-systems/askflow/pkg/dispatch"
	"github.com/zen-systems/askflow/pkg/provider"
)

const defaultTopK = 3

// Dispatcher obtains one generated response, trying credentials until one
// answers.
type Dispatcher interface {
	Dispatch(ctx context.Context, req provider.Request) (dispatch.Result, error)
}

// Agent answers questions. Safe for concurrent use: each AskQuestion call
// owns its own State, and the only shared mutable state lives behind the
// pool's health flags.
type Agent struct {
	dispatcher     Dispatcher
	retriever      Retriever
	topK           int
	topicHint      string
	alwaysRetrieve bool
	logger         *log.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithTopK sets how many documents the retrieve stage asks for.
func WithTopK(k int) Option {
	return func(a *Agent) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithTopicHint sets the knowledge-base subject named in the planning
// prompt.
func WithTopicHint(hint string) Option {
	return func(a *Agent) {
		if hint != "" {
			a.topicHint = hint
		}
	}
}

// WithAlwaysRetrieve skips the planning stage entirely: every question is
// treated as needing retrieval, and no classification call is dispatched.
func WithAlwaysRetrieve() Option {
	return func(a *Agent) {
		a.alwaysRetrieve = true
	}
}

// WithLogger sets the agent logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Agent. The retriever may be nil; retrieval then reports a
// retrieval-stage failure and the pipeline continues without context.
func New(d Dispatcher, r Retriever, opts ...Option) (*Agent, error) {
	if d == nil {
		return nil, errors.New("agent requires a dispatcher")
	}
	a := &Agent{
		dispatcher: d,
		retriever:  r,
		topK:       defaultTopK,
		topicHint:  defaultTopicHint,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AskQuestion runs the pipeline and returns the terminal state. Every
// failure inside the pipeline is folded into the state; the only error
// returned here is caller misuse.
func (a *Agent) AskQuestion(ctx context.Context, question string) (State, error) {
	if strings.TrimSpace(question) == "" {
		return State{}, errors.New("question is empty")
	}

	st := State{ID: uuid.NewString(), Question: question}
	a.logger.Info("starting pipeline", "id", st.ID, "question", truncate(question, 80))

	start := time.Now()
	st = a.plan(ctx, st)
	st = a.retrieve(ctx, st)
	st = a.answer(ctx, st)
	st = a.reflect(ctx, st)
	st.Elapsed = time.Since(start)

	a.logger.Info("pipeline completed", "id", st.ID, "provider", st.Provider, "relevant", st.Relevant, "elapsed", st.Elapsed)
	return st, nil
}

// plan decides whether the question needs retrieval. A dispatch failure is
// folded into the decision text, which never contains "YES", so planning
// never aborts the pipeline.
func (a *Agent) plan(ctx context.Context, st State) State {
	if a.alwaysRetrieve {
		st.NeedsRetrieval = true
		a.logger.Info("planning skipped, retrieval forced", "id", st.ID)
		return st
	}

	res, err := a.dispatcher.Dispatch(ctx, provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: planSystemPrompt},
			{Role: "user", Content: planPrompt(st.Question, a.topicHint)},
		},
	})
	decision := res.Text
	if err != nil {
		decision = failureText
	}

	st.NeedsRetrieval = strings.Contains(strings.ToUpper(decision), "YES")
	a.logger.Info("planning decision", "id", st.ID, "needs_retrieval", st.NeedsRetrieval)
	return st
}

func (a *Agent) retrieve(ctx context.Context, st State) State {
	st.Documents = []Document{}
	st.Context = ""
	if !st.NeedsRetrieval {
		a.logger.Info("skipping retrieval", "id", st.ID)
		return st
	}

	if a.retriever == nil {
		st.RetrievalErr = "no retriever configured"
		a.logger.Warn("retrieval failed", "id", st.ID, "err", st.RetrievalErr)
		return st
	}

	docs, err := a.retriever.Search(ctx, st.Question, a.topK)
	if err != nil {
		st.RetrievalErr = err.Error()
		a.logger.Warn("retrieval failed", "id", st.ID, "err", err)
		return st
	}

	st.Documents = docs
	st.Context = FormatContext(docs)
	a.logger.Info("retrieved documents", "id", st.ID, "count", len(docs))
	return st
}

func (a *Agent) answer(ctx context.Context, st State) State {
	prompt := answerPrompt(st.Question, st.Context, st.NeedsRetrieval)
	res, err := a.dispatcher.Dispatch(ctx, provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Prompt: prompt,
	})
	if err != nil {
		st.Answer = failureText
		st.Answered = false
		a.logger.Warn("answer dispatch exhausted", "id", st.ID, "err", err)
		return st
	}

	st.Answer = res.Text
	st.Answered = true
	st.Provider = res.Provider
	a.logger.Info("generated answer", "id", st.ID, "provider", st.Provider, "preview", truncate(res.Text, 80))
	return st
}

func (a *Agent) reflect(ctx context.Context, st State) State {
	prompt := reflectPrompt(st.Question, st.Answer, st.Context)
	res, err := a.dispatcher.Dispatch(ctx, provider.Request{
		Messages: []provider.Message{
			{Role: "system", Content: reflectSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Prompt: prompt,
	})
	if err != nil {
		st.Reflection = failureText
		st.Reflected = false
	} else {
		st.Reflection = res.Text
		st.Reflected = true
	}

	// Length/prefix heuristic carried over from the reference behavior;
	// the structured reflection scores are never parsed.
	st.Relevant = len(st.Answer) > 20 && !strings.HasPrefix(st.Answer, "Error")
	a.logger.Info("reflection completed", "id", st.ID, "relevant", st.Relevant)
	return st
}

// truncate shortens s to at most n runes for log previews, never cutting
// inside a multibyte sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
