// Package report renders a derived table and its aggregates as text, HTML,
// CSV, and XLSX artifacts. Rendering is pure serialization; every number it
// shows was computed by the pipeline.
package report

import (
	"time"

	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/pipeline"
)

// Options configures report assembly.
type Options struct {
	GroupBy            string
	TopN               int
	HighlightThreshold float64
	Commentary         *Commentary
	GeneratedAt        time.Time // zero means now
}

// Data bundles everything the renderers need for one report.
type Data struct {
	Source      string
	GeneratedAt time.Time
	AsOf        time.Time
	Warnings    []string
	Table       *model.Table
	Metrics     model.RunMetrics
	Groups      []pipeline.GroupSummary
	Over        []pipeline.GroupSummary
	Under       []pipeline.GroupSummary
	Top         *model.Table
	Bottom      *model.Table
	Commentary  *Commentary
}

// Build assembles report data from a pipeline result and the (possibly
// filtered) table the user selected. An empty table produces a valid report
// with the "no data" variant; it never fails.
func Build(source string, res *pipeline.Result, table *model.Table, opts Options) *Data {
	if opts.GroupBy == "" {
		opts.GroupBy = model.ColProjectName
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.HighlightThreshold == 0 {
		opts.HighlightThreshold = 10
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	groups := pipeline.Summarize(table, opts.GroupBy)
	over, under := pipeline.Highlights(groups, opts.HighlightThreshold)

	return &Data{
		Source:      source,
		GeneratedAt: opts.GeneratedAt,
		AsOf:        res.AsOf,
		Warnings:    res.Warnings,
		Table:       table,
		Metrics:     pipeline.ComputeKeyMetrics(table),
		Groups:      groups,
		Over:        over,
		Under:       under,
		Top:         pipeline.TopN(table, model.ColAvgMonthlySpreadScore, opts.TopN),
		Bottom:      pipeline.BottomN(table, model.ColAvgMonthlySpreadScore, opts.TopN),
		Commentary:  opts.Commentary,
	}
}
