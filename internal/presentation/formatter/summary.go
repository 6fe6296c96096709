package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-tally/internal/util"
)

// SummaryFormatter prints a plain-text report with a bar per topic.
type SummaryFormatter struct {
	barWidth int
}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{barWidth: 30}
}

// Format writes the report.
func (f *SummaryFormatter) Format(w io.Writer, stats Stats) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString("Tally Summary\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Events: %d / %d\n\n", stats.Events, stats.Capacity)

	if stats.Total == 0 {
		b.WriteString("No events recorded\n")
	}

	names := make([]string, len(stats.Rows))
	nameWidth := 0
	for i, r := range stats.Rows {
		names[i] = util.Printable(r.Topic)
		nameWidth = max(nameWidth, len([]rune(names[i])))
	}
	for i, r := range stats.Rows {
		filled := int(r.Share*float64(f.barWidth) + 0.5)
		fmt.Fprintf(&b, "%-*s %s%s %5d %5.1f%%\n",
			nameWidth, names[i],
			strings.Repeat("█", filled), strings.Repeat("░", f.barWidth-filled),
			r.Count, r.Share*100)
	}
	b.WriteString(strings.Repeat("=", 50) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
