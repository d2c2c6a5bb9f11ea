package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pushchain/memo-clients/memoClient/batchmint"
	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/pushchain/memo-clients/memoClient/smoke"
)

func smokeCmd(env *appEnv) *cobra.Command {
	var opts smoke.Options
	cmd := &cobra.Command{
		Use:       "smoke <scenario>|all",
		Short:     "Run end-to-end scenarios against the configured cluster",
		Long:      "Scenarios: " + strings.Join(smoke.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: append(smoke.Names(), "all"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.client(cmd.Context())
			if err != nil {
				return err
			}
			runner := smoke.New(c, opts, env.logger)

			var reports []smoke.Report
			if args[0] == "all" {
				reports = runner.RunAll(cmd.Context())
			} else {
				reports = []smoke.Report{runner.Run(cmd.Context(), args[0])}
			}

			failed := 0
			for _, rep := range reports {
				fmt.Fprintln(cmd.OutOrStdout(), rep.Summary())
				for _, check := range rep.Checks {
					if !check.OK() {
						fmt.Fprint(cmd.OutOrStdout(), check.Diff())
					}
				}
				if !rep.OK() {
					failed++
					printHint(cmd.ErrOrStderr(), rep.Err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario(s) failed", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&opts.BalanceTokens, "balance", constant.DefaultSmokeBalanceTokens, "Token balance guaranteed before burning scenarios")
	cmd.Flags().Uint64Var(&opts.ChatBurnTokens, "chat-burn", constant.DefaultChatSmokeBurnTokens, "Tokens burned by the chat scenario")
	return cmd
}

// BatchOutput summarizes a batch-mint run.
type BatchOutput struct {
	Workers     int            `yaml:"workers" json:"workers"`
	Attempts    int            `yaml:"attempts" json:"attempts"`
	Successes   int            `yaml:"successes" json:"successes"`
	Failures    map[string]int `yaml:"failures,omitempty" json:"failures,omitempty"`
	MintedUnits uint64         `yaml:"minted_units" json:"minted_units"`
	MinLatency  string         `yaml:"min_latency" json:"min_latency"`
	AvgLatency  string         `yaml:"avg_latency" json:"avg_latency"`
	MaxLatency  string         `yaml:"max_latency" json:"max_latency"`
	TotalTime   string         `yaml:"total_time" json:"total_time"`
}

func batchMintCmd(env *appEnv) *cobra.Command {
	var (
		opts   batchmint.Options
		listen string
	)
	cmd := &cobra.Command{
		Use:   "batch-mint",
		Short: "Mint repeatedly from concurrent workers and report latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			programs, wallet, err := env.signer()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("metrics-listen") {
				listen = env.cfg.MetricsListen
			}

			// Each worker dials its own ledger connection.
			newWorker := func(ctx context.Context, id int) (batchmint.Worker, error) {
				c, err := env.clientFor(ctx, programs, wallet, env.logger.With().Int("worker", id).Logger())
				if err != nil {
					return nil, err
				}
				return batchmint.ClientWorker{Client: c}, nil
			}
			runner := batchmint.New(newWorker, env.metrics, env.logger)

			var stats batchmint.Stats
			g, ctx := errgroup.WithContext(cmd.Context())
			serveCtx, stopServing := context.WithCancel(ctx)
			if listen != "" {
				g.Go(func() error { return env.metrics.Serve(serveCtx, listen, env.logger) })
			}
			g.Go(func() error {
				defer stopServing()
				var err error
				stats, err = runner.Run(ctx, opts)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			return printOutput(cmd.OutOrStdout(), BatchOutput{
				Workers:     opts.Workers,
				Attempts:    stats.Attempts,
				Successes:   stats.Successes,
				Failures:    stats.Failures,
				MintedUnits: stats.MintedUnits,
				MinLatency:  stats.MinLatency.Round(time.Millisecond).String(),
				AvgLatency:  stats.AvgLatency().Round(time.Millisecond).String(),
				MaxLatency:  stats.MaxLatency.Round(time.Millisecond).String(),
				TotalTime:   stats.TotalTime.Round(time.Millisecond).String(),
			}, outputFormat(cmd))
		},
	}
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 1, "Concurrent workers, one ledger connection each")
	cmd.Flags().IntVar(&opts.PerWorker, "count", 10, "Mint attempts per worker")
	cmd.Flags().IntVar(&opts.MemoLength, "memo-length", constant.MinMemoLength, "Length of the generated mint memos")
	cmd.Flags().DurationVar(&opts.Pause, "pause", time.Second, "Pause between a worker's attempts")
	cmd.Flags().StringVar(&listen, "metrics-listen", "", "Serve /metrics on this address while running")
	return cmd
}
