package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/store"
)

var (
	runsStatus string
	runsSource string
	runsLimit  int
	runsJSON   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Source: runsSource,
			Limit:  runsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}

		if runsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(runs), "runs: encode")
		}

		for _, r := range runs {
			fmt.Printf("%s  %-8s  %-30s  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Status, r.Source, r.ID)
			if r.Error != "" {
				fmt.Printf("    error: %s\n", r.Error)
			}
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (queued, running, complete, failed)")
	runsCmd.Flags().StringVar(&runsSource, "source", "", "filter by source name")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum rows to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "emit JSON instead of a table")

	rootCmd.AddCommand(runsCmd)
}
