package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zen-systems/askflow/pkg/agent"
	"github.com/zen-systems/askflow/pkg/config"
	"github.com/zen-systems/askflow/pkg/dispatch"
	"github.com/zen-systems/askflow/pkg/health"
	"github.com/zen-systems/askflow/pkg/knowledge"
	"github.com/zen-systems/askflow/pkg/pool"
	"github.com/zen-systems/askflow/pkg/status"
)

const timeRound = 10 * time.Millisecond

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "askflow",
		Short: "Question answering over redundant LLM providers",
		Long: `Askflow answers natural-language questions through a fixed
	Plan -> Retrieve -> Answer -> Reflect pipeline, dispatching every
	generation call across a pool of redundant providers so a single
	exhausted quota or outage does not fail the request.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(providersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// buildPool validates every configured credential. Fails when not a single
// credential survives.
func buildPool(ctx context.Context, cfg *config.Config, logger *log.Logger) (*pool.Pool, error) {
	if !cfg.HasKeys() {
		return nil, fmt.Errorf("no API keys configured: set GROQ_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY, or edit %s/config.yaml", cfg.ConfigDir)
	}

	p := pool.New(ctx, cfg.Keys, nil, logger)
	if p.IsEmpty() {
		return nil, pool.ErrNoProviders
	}
	return p, nil
}

func buildAgent(ctx context.Context, cfg *config.Config, logger *log.Logger, extra ...agent.Option) (*agent.Agent, *pool.Pool, *knowledge.Store, error) {
	p, err := buildPool(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := knowledge.Open(cfg.KnowledgePath)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := store.SeedSample(ctx); err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	d := dispatch.New(p,
		dispatch.WithTimeout(cfg.Timeout),
		dispatch.WithLogger(logger),
	)

	opts := []agent.Option{
		agent.WithTopK(cfg.TopK),
		agent.WithLogger(logger),
	}
	if cfg.TopicHint != "" {
		opts = append(opts, agent.WithTopicHint(cfg.TopicHint))
	}
	opts = append(opts, extra...)

	a, err := agent.New(d, store, opts...)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return a, p, store, nil
}

func askCmd() *cobra.Command {
	var showReflection bool
	var noRetrievalCheck bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question, or start an interactive session",
		Long: `Runs the question through the pipeline and prints the answer.
	With no argument, starts an interactive session; type "exit" to leave
	and see session statistics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var extra []agent.Option
			if noRetrievalCheck {
				extra = append(extra, agent.WithAlwaysRetrieve())
			}

			a, _, store, err := buildAgent(ctx, cfg, logger, extra...)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				st, err := a.AskQuestion(ctx, args[0])
				if err != nil {
					return err
				}
				printState(st, showReflection)
				return nil
			}
			return interactive(ctx, a, showReflection)
		},
	}

	cmd.Flags().BoolVar(&showReflection, "show-reflection", false, "print the quality reflection after the answer")
	cmd.Flags().BoolVar(&noRetrievalCheck, "no-retrieval-check", false, "always retrieve, skipping the planning call")
	return cmd
}

func interactive(ctx context.Context, a *agent.Agent, showReflection bool) error {
	tracker := status.NewTracker()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	fmt.Println("Ask a question, or type \"exit\" to quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		st, err := a.AskQuestion(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		tracker.Record(st)
		printState(st, showReflection)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	printSession(tracker.Snapshot())
	return nil
}

func printState(st agent.State, showReflection bool) {
	fmt.Println(st.Answer)
	fmt.Println()
	if st.Answered {
		fmt.Printf("[provider: %s | retrieval: %v | relevant: %v | %s]\n",
			st.Provider, st.NeedsRetrieval, st.Relevant, st.Elapsed.Round(timeRound))
	} else {
		fmt.Printf("[no provider answered | retrieval: %v | %s]\n",
			st.NeedsRetrieval, st.Elapsed.Round(timeRound))
	}
	if st.RetrievalErr != "" {
		fmt.Printf("[retrieval failed: %s]\n", st.RetrievalErr)
	}
	if showReflection && st.Reflected {
		fmt.Println()
		fmt.Println("--- Reflection ---")
		fmt.Println(st.Reflection)
	}
}

func printSession(snap status.Snapshot) {
	if snap.Total == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("Session: %d questions, %d answered, %d failed, avg %s\n",
		snap.Total, snap.Answered, snap.Failed, snap.AvgLatency.Round(timeRound))
	for provider, count := range snap.Providers {
		fmt.Printf("  %s: %d\n", provider, count)
	}
	for _, rec := range snap.Recommendations {
		fmt.Printf("  note: %s\n", rec)
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Re-validate every credential and report overall status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := buildPool(ctx, cfg, logger)
			if err != nil {
				return err
			}

			probe := health.NewProbe(p, cfg.Timeout, logger)
			report := probe.Check(ctx)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tCREDENTIAL\tSTATUS\tDETAIL")
			for _, kind := range p.Kinds() {
				statuses := report.Credentials[kind]
				if len(statuses) == 0 {
					fmt.Fprintf(w, "%s\t-\tno credentials\t\n", kind)
					continue
				}
				for _, cs := range statuses {
					state := "Healthy"
					if !cs.Healthy {
						state = "Unhealthy"
					}
					fmt.Fprintf(w, "%s\t%d (%s)\t%s\t%s\n", kind, cs.Index+1, cs.Label, state, cs.Err)
				}
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "OVERALL\t%s\n", report.Overall)
			return w.Flush()
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, pool, and knowledge base status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := buildPool(ctx, cfg, logger)
			if err != nil {
				return err
			}

			store, err := knowledge.Open(cfg.KnowledgePath)
			if err != nil {
				return err
			}
			defer store.Close()
			docs, err := store.Count(ctx)
			if err != nil {
				return err
			}

			probe := health.NewProbe(p, cfg.Timeout, logger)
			report := probe.Check(ctx)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Config dir\t%s\n", cfg.ConfigDir)
			fmt.Fprintf(w, "Knowledge base\t%s (%d documents)\n", cfg.KnowledgePath, docs)
			for _, kind := range p.Kinds() {
				fmt.Fprintf(w, "Provider %s\t%d credentials, %d healthy\n",
					kind, p.CredentialCount(kind), report.HealthyCount(kind))
			}
			fmt.Fprintf(w, "Overall health\t%s\n", report.Overall)
			return w.Flush()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample corpus into the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := knowledge.Open(cfg.KnowledgePath)
			if err != nil {
				return err
			}
			defer store.Close()

			added, err := store.SeedSample(cmd.Context())
			if err != nil {
				return err
			}
			if added == 0 {
				fmt.Println("Knowledge base already seeded.")
				return nil
			}
			fmt.Printf("Seeded %d sample documents into %s\n", added, cfg.KnowledgePath)
			return nil
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List validated provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			p, err := buildPool(ctx, cfg, logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tCREDENTIALS\tHEALTHY FLAG")
			kinds := p.Kinds()
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			for _, kind := range kinds {
				fmt.Fprintf(w, "%s\t%d\t%v\n", kind, p.CredentialCount(kind), p.IsHealthy(kind))
			}
			return w.Flush()
		},
	}
}
