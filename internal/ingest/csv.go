package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV reads a tabular file with the first row as header. Records may
// have a variable field count; normalization pads or truncates them against
// the header later.
func ReadCSV(r io.Reader, opts CSVOptions) (header []string, records [][]string, err error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	first := true
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			return header, records, nil
		}
		if readErr != nil {
			return nil, nil, eris.Wrap(readErr, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first {
			first = false
			header = record
			continue
		}
		records = append(records, record)
	}
}
