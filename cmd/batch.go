package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchContinueOnError bool

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Run the pipeline over multiple files concurrently",
	Long:  "Processes each file as an independent run. Files never share state; a failure in one file leaves the others untouched.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "batch: open store")
		}
		defer st.Close() //nolint:errcheck

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.Concurrency)

		for _, source := range args {
			source := source
			g.Go(func() error {
				res, runID, err := executeRun(gctx, st, source)
				if err != nil {
					if batchContinueOnError {
						zap.L().Error("batch run failed",
							zap.String("source", source), zap.Error(err))
						return nil
					}
					return eris.Wrapf(err, "batch: %s", source)
				}
				fmt.Printf("%s: run %s, %d projects, net reallocation %.2f\n",
					source, runID, res.Metrics.Projects, res.Metrics.NetReallocation)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchContinueOnError, "continue-on-error", false, "log per-file failures instead of aborting the batch")
	batchCmd.Flags().StringVar(&flagAsOf, "as-of", "", "reporting date (YYYY-MM-DD), default today")
	batchCmd.Flags().StringVar(&flagMissingMonth, "missing-month", "", "missing-month policy: excluded or zero")
	batchCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "recompute even when a cached result exists")

	rootCmd.AddCommand(batchCmd)
}
