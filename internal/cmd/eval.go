package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/liquers/liquers-go/internal/asset"
	"github.com/liquers/liquers-go/internal/config"
	"github.com/liquers/liquers-go/internal/logging"
	"github.com/liquers/liquers-go/internal/monitor"
	"github.com/liquers/liquers-go/internal/registry"
)

var evalTimeout time.Duration

var evalCmd = &cobra.Command{
	Use:   "eval <query>",
	Short: "Evaluate a single query and print the result",
	Long: `Eval runs one query through the evaluation pipeline without the
terminal UI, waits for it to finish and prints the resulting value.

Examples:
  liquers eval text-Hello/uppercase
  liquers eval "expr-1 + 2"
  liquers --store ./data eval store-input.txt/length`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 30*time.Second, "maximum time to wait for the result")
}

// evalSink collects the final snapshot of a one-shot evaluation.
type evalSink struct {
	mu   sync.Mutex
	last asset.Snapshot
	done bool
}

func (s *evalSink) Update(snap asset.Snapshot) registry.Redraw {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap
	if snap.Status.Terminal() {
		s.done = true
	}
	return false
}

func (s *evalSink) result() (asset.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.done
}

func runEval(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logger.Close()

	pipeline, watcher, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	consumers := registry.New()
	coord := monitor.New(pipeline, consumers, monitor.WithLogger(logger))

	sink := &evalSink{}
	handle := consumers.Add(sink)
	if !coord.Submit(monitor.Request{Handle: handle, Query: query}) {
		return fmt.Errorf("request buffer full")
	}

	interval := time.Duration(cfg.Monitor.TickIntervalMs) * time.Millisecond
	deadline := time.Now().Add(evalTimeout)
	for {
		coord.Cycle()
		if snap, done := sink.result(); done {
			if snap.Err != nil {
				return fmt.Errorf("%s: %w", query, snap.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snap.Text())
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s: no result after %s", query, evalTimeout)
		}
		time.Sleep(interval)
	}
}
