package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/pipeline"
)

// WriteTableCSV writes the derived table, header first. Numeric cells use
// the shortest exact representation so re-parsing the file reproduces the
// values used on screen.
func WriteTableCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			switch v := row[col].(type) {
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			case string:
				record[i] = v
			default:
				record[i] = row.Str(col)
			}
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush csv")
}

// WriteSummaryCSV writes the grouped summary rows.
func WriteSummaryCSV(w io.Writer, groups []pipeline.GroupSummary) error {
	b, err := csvutil.Marshal(groups)
	if err != nil {
		return eris.Wrap(err, "report: marshal summary csv")
	}
	_, err = w.Write(b)
	return eris.Wrap(err, "report: write summary csv")
}
