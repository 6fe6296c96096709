package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/util"
)

// Export kinds, used in file names
const (
	KindTotals = "totals"
	KindEvents = "events"
)

const (
	totalsHeader = "Topic,Count\n"
	eventsHeader = "Topic,Timestamp (Epoch),Timestamp (ISO)\n"
	exportPrefix = "event-counter"
)

// TotalsCSV renders one line per topic in board order.
func TotalsCSV(topics []model.Topic) string {
	var b strings.Builder
	b.WriteString(totalsHeader)
	for _, t := range topics {
		b.WriteString(quote(t.Name))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(t.Count))
		b.WriteByte('\n')
	}
	return b.String()
}

// EventsCSV renders one line per event, oldest first. Names are the
// snapshot taken at increment time.
func EventsCSV(timeline []model.TimelineEvent) string {
	var b strings.Builder
	b.WriteString(eventsHeader)
	for _, ev := range timeline {
		b.WriteString(quote(ev.TopicName))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(ev.Timestamp, 10))
		b.WriteByte(',')
		b.WriteString(quote(ev.ISODatestamp))
		b.WriteByte('\n')
	}
	return b.String()
}

// quote always wraps s in double quotes, doubling any inside.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportFileName returns the download name for an export kind.
func ExportFileName(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.%s", exportPrefix, kind, util.FileStamp(now), ext)
}

// CSVFormatter writes the totals CSV for the stats command.
type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, stats Stats) error {
	topics := make([]model.Topic, len(stats.Rows))
	for i, r := range stats.Rows {
		topics[i] = model.Topic{Name: r.Topic, Count: r.Count}
	}
	_, err := io.WriteString(w, TotalsCSV(topics))
	return err
}

// WriteExport writes both CSV files into dir and returns their paths.
func WriteExport(dir string, now time.Time, snap model.Snapshot) ([]string, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		kind string
		body string
	}{
		{KindTotals, TotalsCSV(snap.Topics)},
		{KindEvents, EventsCSV(snap.Timeline)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, ExportFileName(f.kind, "csv", now))
		if err := os.WriteFile(path, []byte(f.body), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s export: %w", f.kind, err)
		}
		util.LogInfo("Exported CSV", util.F("kind", f.kind), util.F("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}
