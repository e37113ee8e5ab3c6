package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/pipeline"
	"github.com/sells-group/capital-cli/internal/report"
)

var (
	exportInput      string
	exportFormat     string
	exportOut        string
	exportGroupBy    string
	exportCommentary string
	exportProjects   []string
	exportManagers   []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline and write an HTML, CSV, or XLSX report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "export: open store")
		}
		defer st.Close() //nolint:errcheck

		res, runID, err := executeRun(ctx, st, exportInput)
		if err != nil {
			return eris.Wrapf(err, "export: %s", exportInput)
		}

		table := pipeline.ApplyFilter(res.Table, pipeline.FilterSpec{
			Projects: exportProjects,
			Managers: exportManagers,
		})

		opts := report.Options{
			GroupBy:            reportGroupBy(exportGroupBy),
			TopN:               cfg.Report.TopN,
			HighlightThreshold: cfg.Report.HighlightThreshold,
		}
		if exportCommentary != "" {
			c, err := report.LoadCommentary(exportCommentary)
			if err != nil {
				return eris.Wrap(err, "export: load commentary")
			}
			opts.Commentary = c
		}
		data := report.Build(exportInput, res, table, opts)

		if err := writeExport(data, exportFormat, exportOut); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("run_id", runID),
			zap.String("format", exportFormat),
			zap.String("out", exportOut))
		return nil
	},
}

func writeExport(data *report.Data, format, out string) error {
	if format == "xlsx" {
		return report.WriteWorkbook(out, data)
	}

	f, err := os.Create(out)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", out)
	}
	defer f.Close() //nolint:errcheck

	switch format {
	case "html":
		return report.WriteHTML(f, data)
	case "csv":
		return report.WriteTableCSV(f, data.Table)
	case "summary-csv":
		return report.WriteSummaryCSV(f, data.Groups)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "input file path or URL (csv or xlsx)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "html", "output format: html, csv, summary-csv, or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file path")
	exportCmd.Flags().StringVar(&exportGroupBy, "group-by", "", "canonical column to group the summary by")
	exportCmd.Flags().StringVar(&exportCommentary, "commentary", "", "YAML commentary file appended to the report")
	exportCmd.Flags().StringArrayVar(&exportProjects, "project", nil, "restrict to a project name (repeatable)")
	exportCmd.Flags().StringArrayVar(&exportManagers, "manager", nil, "restrict to a project manager (repeatable)")
	exportCmd.Flags().StringVar(&flagAsOf, "as-of", "", "reporting date (YYYY-MM-DD), default today")
	exportCmd.Flags().StringVar(&flagMissingMonth, "missing-month", "", "missing-month policy: excluded or zero")
	exportCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "recompute even when a cached result exists")
	_ = exportCmd.MarkFlagRequired("input")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}
