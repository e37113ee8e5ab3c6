package pipeline

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/capital-cli/internal/model"
)

// expectedColumns are checked after normalization; their absence degrades to
// defaults but is surfaced to the operator.
var expectedColumns = []string{
	model.ColProjectName,
	model.ColProjectManager,
	model.ColBusinessAllocation,
	model.ColPriorYearsActuals,
}

// Result is the fully materialized output of one pipeline invocation. The
// table is frozen once Run returns; consumers only read.
type Result struct {
	Table          *model.Table       `json:"table"`
	Classification Classification     `json:"classification"`
	AsOf           time.Time          `json:"as_of"`
	MissingMonth   MissingMonthPolicy `json:"missing_month"`
	Warnings       []string           `json:"warnings,omitempty"`
	Metrics        model.RunMetrics   `json:"metrics"`
}

// Run executes the full normalization and derivation pipeline over one
// uploaded table: canonicalize headers, coerce financial cells, classify
// monthly columns against the as-of year, derive metrics, and compute the
// headline scalars. Cell-level problems are absorbed into defaults; only a
// headerless upload is an error.
func Run(headers []string, records [][]string, opts Options) (*Result, error) {
	if len(headers) == 0 {
		return nil, eris.New("pipeline: upload has no header row")
	}
	opts = opts.withDefaults()
	if !opts.MissingMonth.Valid() {
		return nil, eris.Errorf("pipeline: unknown missing-month policy %q", opts.MissingMonth)
	}

	columns := CanonicalColumns(headers)
	table := model.NewTable(columns, records)
	CoerceFinancial(table)

	cls := Classify(columns, opts.AsOf.Year())

	var warnings []string
	warn := func(msg string) {
		warnings = append(warnings, msg)
		zap.L().Warn("pipeline: " + msg)
	}
	for _, col := range expectedColumns {
		if !table.HasColumn(col) {
			warn("missing expected column " + col + ", defaulting to 0/blank")
		}
	}
	if cls.Empty() {
		warn("no monthly columns recognized for year " + opts.AsOf.Format("2006") + "; totals will be 0")
	}

	DeriveMetrics(table, cls, opts)

	return &Result{
		Table:          table,
		Classification: cls,
		AsOf:           opts.AsOf,
		MissingMonth:   opts.MissingMonth,
		Warnings:       warnings,
		Metrics:        ComputeKeyMetrics(table),
	}, nil
}

// FilterSpec restricts the derived table to user-selected projects and
// managers before aggregation. Empty slices match everything.
type FilterSpec struct {
	Projects []string
	Managers []string
}

// Empty reports whether the filter matches every row.
func (f FilterSpec) Empty() bool {
	return len(f.Projects) == 0 && len(f.Managers) == 0
}

// ApplyFilter returns the rows matching the filter. An empty result is a
// valid outcome; rendering for that view simply stops.
func ApplyFilter(t *model.Table, f FilterSpec) *model.Table {
	if f.Empty() {
		return t
	}
	projects := toSet(f.Projects)
	managers := toSet(f.Managers)
	return t.Filter(func(row model.Row) bool {
		if len(projects) > 0 && !projects[row.Str(model.ColProjectName)] {
			return false
		}
		if len(managers) > 0 && !managers[row.Str(model.ColProjectManager)] {
			return false
		}
		return true
	})
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Marshal serializes the result for the run cache.
func (r *Result) Marshal() ([]byte, error) {
	b, err := json.Marshal(r)
	return b, eris.Wrap(err, "pipeline: marshal result")
}

// UnmarshalResult decodes a cached result payload.
func UnmarshalResult(b []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, eris.Wrap(err, "pipeline: unmarshal cached result")
	}
	return &r, nil
}
