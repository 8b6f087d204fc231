// Package cli builds the poolctl command tree: run, bench, and status,
// mirroring the shape the teacher repo's internal/cli uses (Cobra root +
// persistent --config flag + one subcommand per concern), but driving
// pool.Pool instead of a durable job queue.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chuliyu/workerpool/internal/config"
	"github.com/chuliyu/workerpool/internal/metrics"
	"github.com/chuliyu/workerpool/pool"
)

var configFile string

// BuildCLI assembles the poolctl root command and its subcommands.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poolctl",
		Short: "poolctl: a fixed-size worker pool you can run, benchmark, and inspect",
		Long: `poolctl drives the workerpool engine:
- a bounded FIFO task queue guarded by a mutex/condvar protocol
- a fixed set of worker goroutines, idle until woken
- optional Prometheus metrics and structured logging`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildBenchCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pool and block until SIGINT/SIGTERM",
		Long:  "Load config, create a pool, optionally serve metrics, and wait for a shutdown signal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPool(configFile)
		},
	}
	return cmd
}

func runPool(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("starting pool", "workers", cfg.Worker.Count, "panic_recovery", cfg.Worker.PanicRecovery)

	opts := []pool.Option{pool.WithLogger(logger)}
	if cfg.Worker.PanicRecovery {
		opts = append(opts, pool.WithPanicRecovery())
	}

	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		opts = append(opts, pool.WithMetrics(collector))

		go func() {
			logger.Info("starting metrics server", "port", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	p, err := pool.Create(cfg.Worker.Count, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, draining pool")
	p.Shutdown()
	if err := p.JoinThenDestroy(); err != nil {
		return fmt.Errorf("failed to drain pool: %w", err)
	}

	logger.Info("pool stopped")
	return nil
}

func buildBenchCommand() *cobra.Command {
	var count int
	var workDuration time.Duration

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Submit a batch of synthetic tasks and report completion time",
		Long:  "Creates a pool from config, submits --count synthetic tasks each sleeping --work, and times the drain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(configFile, count, workDuration)
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "number of synthetic tasks to submit")
	cmd.Flags().DurationVar(&workDuration, "work", time.Millisecond, "simulated per-task work duration")

	return cmd
}

func runBench(path string, count int, work time.Duration) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, err := pool.Create(cfg.Worker.Count)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	var completed atomic.Int64
	var wg sync.WaitGroup
	wg.Add(count)

	start := time.Now()
	for i := 0; i < count; i++ {
		if err := p.Submit(func() {
			defer wg.Done()
			if work > 0 {
				time.Sleep(work)
			}
			completed.Add(1)
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit %d rejected: %w", i, err)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	p.Shutdown()
	if err := p.JoinThenDestroy(); err != nil {
		return fmt.Errorf("failed to drain pool: %w", err)
	}

	fmt.Printf("completed %d/%d tasks across %d workers in %s (%.0f tasks/sec)\n",
		completed.Load(), count, cfg.Worker.Count, elapsed, float64(count)/elapsed.Seconds())
	return nil
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the resolved pool status and config",
		Long:  "Display the config that `run` would use, without starting a pool.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
	return cmd
}

func showStatus() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("poolctl status")
	fmt.Printf("  config file:    %s\n", configFile)
	fmt.Printf("  worker count:   %d\n", cfg.Worker.Count)
	fmt.Printf("  panic recovery: %t\n", cfg.Worker.PanicRecovery)
	if cfg.Metrics.Enabled {
		fmt.Printf("  metrics:        enabled on :%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Println("  metrics:        disabled")
	}
	return nil
}

// loadConfig loads the named config file, falling back to config.Default()
// only for the unmodified default path (so `status`/`run` work out of the
// box with no configs/default.yaml present, but an explicit --config that
// does not exist is still a hard error).
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if path == "configs/default.yaml" {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return config.Load(path)
}
