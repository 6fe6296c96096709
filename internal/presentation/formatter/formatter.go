// Package formatter renders board data as CSV exports and stats reports.
package formatter

import (
	"fmt"
	"io"
)

// Output formats accepted by the stats command
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
)

// Outputs lists every supported stats output format.
var Outputs = []string{OutputTable, OutputJSON, OutputCSV, OutputSummary}

// Formatter writes a stats report.
type Formatter interface {
	Format(w io.Writer, stats Stats) error
}

// New returns the formatter for an output name.
func New(output string) (Formatter, error) {
	switch output {
	case OutputJSON:
		return NewJSONFormatter(), nil
	case OutputCSV:
		return NewCSVFormatter(), nil
	case OutputSummary:
		return NewSummaryFormatter(), nil
	case OutputTable, "":
		return NewTableFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", output)
	}
}
