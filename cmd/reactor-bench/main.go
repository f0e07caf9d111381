// Command reactor-bench runs micro-benchmarks against the reactive
// runtime: signal/memo chains, diamond graphs, and effect fan-out.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactor-bench",
		Short: "Micro-benchmarks for the reactor runtime",
		Long: `reactor-bench exercises the reactive scheduler with synthetic
dependency graphs and reports update throughput.

Scenarios:

  chain    linear signal -> memo -> ... -> memo pipeline
  diamond  one signal fanning out into memo pairs that re-converge
  fanout   one signal driving N independent effects`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		chainCmd(),
		diamondCmd(),
		fanoutCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func chainCmd() *cobra.Command {
	var depth, iterations int

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Benchmark a linear memo chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 1 || iterations < 1 {
				return fmt.Errorf("depth and iterations must be positive")
			}

			r := reactor.NewRoot()
			defer r.Dispose()

			source := reactor.CreateSignal(r, 0)
			tail := reactor.CreateMemo(r, func() int { return source.Get() + 1 })
			for i := 1; i < depth; i++ {
				prev := tail
				tail = reactor.CreateMemo(r, func() int { return prev.Get() + 1 })
			}

			elapsed := measure(iterations, func(i int) {
				source.Set(i)
			})

			if got := tail.Peek(); got != iterations-1+depth {
				return fmt.Errorf("chain result mismatch: got %d, want %d", got, iterations-1+depth)
			}
			report(cmd, "chain", depth, iterations, elapsed, r.Stats())
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 100, "number of memos in the chain")
	cmd.Flags().IntVar(&iterations, "iterations", 10000, "number of source writes")
	return cmd
}

func diamondCmd() *cobra.Command {
	var width, iterations int

	cmd := &cobra.Command{
		Use:   "diamond",
		Short: "Benchmark re-converging memo diamonds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 || iterations < 1 {
				return fmt.Errorf("width and iterations must be positive")
			}

			r := reactor.NewRoot()
			defer r.Dispose()

			source := reactor.CreateSignal(r, 0)
			sinks := make([]*reactor.Memo[int], width)
			for i := 0; i < width; i++ {
				left := reactor.CreateMemo(r, func() int { return source.Get() * 2 })
				right := reactor.CreateMemo(r, func() int { return source.Get() * 3 })
				sinks[i] = reactor.CreateMemo(r, func() int { return left.Get() + right.Get() })
			}

			elapsed := measure(iterations, func(i int) {
				source.Set(i)
			})

			want := (iterations - 1) * 5
			if got := sinks[0].Peek(); got != want {
				return fmt.Errorf("diamond result mismatch: got %d, want %d", got, want)
			}
			report(cmd, "diamond", width, iterations, elapsed, r.Stats())
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 50, "number of diamonds")
	cmd.Flags().IntVar(&iterations, "iterations", 10000, "number of source writes")
	return cmd
}

func fanoutCmd() *cobra.Command {
	var width, iterations int
	var batch bool

	cmd := &cobra.Command{
		Use:   "fanout",
		Short: "Benchmark effect fan-out from one signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 || iterations < 1 {
				return fmt.Errorf("width and iterations must be positive")
			}

			r := reactor.NewRoot()
			defer r.Dispose()

			source := reactor.CreateSignal(r, 0)
			var total int
			for i := 0; i < width; i++ {
				reactor.CreateEffect(r, func() {
					total += source.Get()
				})
			}

			var elapsed time.Duration
			if batch {
				elapsed = measure(1, func(int) {
					r.Batch(func() {
						for i := 0; i < iterations; i++ {
							source.Set(i)
						}
					})
				})
			} else {
				elapsed = measure(iterations, func(i int) {
					source.Set(i)
				})
			}

			report(cmd, "fanout", width, iterations, elapsed, r.Stats())
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 100, "number of effects")
	cmd.Flags().IntVar(&iterations, "iterations", 10000, "number of source writes")
	cmd.Flags().BoolVar(&batch, "batch", false, "coalesce all writes into one batch")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reactor-bench %s (%s)\n", version, commit)
		},
	}
}

func measure(iterations int, fn func(i int)) time.Duration {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		fn(i)
	}
	return time.Since(start)
}

func report(cmd *cobra.Command, scenario string, size, iterations int, elapsed time.Duration, stats reactor.Stats) {
	perOp := elapsed / time.Duration(iterations)
	cmd.Printf("%s: size=%d iterations=%d total=%s per-write=%s\n",
		scenario, size, iterations, elapsed.Round(time.Microsecond), perOp)
	cmd.Printf("  passes=%d memo-recomputes=%d effect-runs=%d live-nodes=%d\n",
		stats.PropagationPasses, stats.MemoRecomputes, stats.EffectRuns, stats.LiveNodes)
}
