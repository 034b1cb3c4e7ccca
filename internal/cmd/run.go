package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/liquers/liquers-go/internal/config"
	"github.com/liquers/liquers-go/internal/evaluator"
	"github.com/liquers/liquers-go/internal/logging"
	"github.com/liquers/liquers-go/internal/monitor"
	"github.com/liquers/liquers-go/internal/registry"
	"github.com/liquers/liquers-go/internal/store"
	"github.com/liquers/liquers-go/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive query console",
	Long: `Run starts the terminal UI. Type a query and press enter to evaluate
it in the focused console; ctrl+n opens a new console for the query.
Consoles update automatically as background evaluation progresses and
when watched store files change.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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
	coord := monitor.New(pipeline, consumers,
		monitor.WithRequestBuffer(cfg.Monitor.RequestBuffer),
		monitor.WithLogger(logger))

	tickInterval := time.Duration(cfg.Monitor.TickIntervalMs) * time.Millisecond
	logger.Info("starting console", "tick_interval", tickInterval.String())

	app := tui.New(coord, consumers, tickInterval)
	return app.Run()
}

// buildPipeline assembles the evaluation pipeline with an optional
// file-backed store and change watcher.
func buildPipeline(cfg *config.Config, logger *logging.Logger) (*evaluator.Pipeline, *store.Watcher, error) {
	opts := []evaluator.Option{evaluator.WithLogger(logger)}

	if cfg.Store.Dir == "" {
		return evaluator.NewPipeline(opts...), nil, nil
	}

	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	opts = append(opts, evaluator.WithStore(st))
	pipeline := evaluator.NewPipeline(opts...)

	if !cfg.Store.Watch {
		return pipeline, nil, nil
	}

	watcher, err := store.NewWatcher(st, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating store watcher: %w", err)
	}
	watcher.OnChange(pipeline.InvalidateKey)
	if err := watcher.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting store watcher: %w", err)
	}
	return pipeline, watcher, nil
}
