package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/pipeline"
	"github.com/sells-group/capital-cli/internal/report"
)

var (
	analyzeInput    string
	analyzeGroupBy  string
	analyzeTopN     int
	analyzeProjects []string
	analyzeManagers []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the budget pipeline over one file and print the report",
	Long:  "Loads a CSV or XLSX capital-project export (local path, http(s), or ftp URL), normalizes and derives metrics as of the reporting date, and prints the text report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "analyze: open store")
		}
		defer st.Close() //nolint:errcheck

		res, runID, err := executeRun(ctx, st, analyzeInput)
		if err != nil {
			return eris.Wrapf(err, "analyze: %s", analyzeInput)
		}

		table := pipeline.ApplyFilter(res.Table, pipeline.FilterSpec{
			Projects: analyzeProjects,
			Managers: analyzeManagers,
		})

		data := report.Build(analyzeInput, res, table, report.Options{
			GroupBy:            reportGroupBy(analyzeGroupBy),
			TopN:               reportTopN(analyzeTopN),
			HighlightThreshold: cfg.Report.HighlightThreshold,
		})

		fmt.Print(report.FormatText(data))

		zap.L().Info("analysis complete",
			zap.String("run_id", runID),
			zap.Int("projects", res.Metrics.Projects),
			zap.Strings("warnings", res.Warnings))
		return nil
	},
}

func reportGroupBy(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Report.GroupBy
}

func reportTopN(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.Report.TopN
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "input file path or URL (csv or xlsx)")
	analyzeCmd.Flags().StringVar(&analyzeGroupBy, "group-by", "", "canonical column to group the summary by")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0, "rows in the most/least predictable listings")
	analyzeCmd.Flags().StringArrayVar(&analyzeProjects, "project", nil, "restrict to a project name (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeManagers, "manager", nil, "restrict to a project manager (repeatable)")
	analyzeCmd.Flags().StringVar(&flagAsOf, "as-of", "", "reporting date (YYYY-MM-DD), default today")
	analyzeCmd.Flags().StringVar(&flagMissingMonth, "missing-month", "", "missing-month policy: excluded or zero")
	analyzeCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "recompute even when a cached result exists")
	_ = analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
}
