package formatter

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/parquet-go/parquet-go"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

var exportTime = time.Date(2024, 1, 15, 10, 30, 45, 123000000, time.UTC)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Topics: []model.Topic{
			{ID: "p", Name: "Pass", Color: "#27AE60", Count: 3},
			{ID: "f", Name: "Fail", Color: "#E74C3C", Count: 1},
		},
		Timeline: []model.TimelineEvent{
			{TopicID: "p", TopicName: "Pass", Timestamp: 1705314645123, ISODatestamp: "2024-01-15T10:30:45.123Z"},
			{TopicID: "f", TopicName: "Fail", Timestamp: 1705314646000, ISODatestamp: "2024-01-15T10:30:46.000Z"},
			{TopicID: "p", TopicName: "Pass", Timestamp: 1705314647000, ISODatestamp: "2024-01-15T10:30:47.000Z"},
			{TopicID: "p", TopicName: "Pass", Timestamp: 1705314648000, ISODatestamp: "2024-01-15T10:30:48.000Z"},
		},
	}
}

func TestTotalsCSV(t *testing.T) {
	tests := []struct {
		name   string
		topics []model.Topic
		want   string
	}{
		{
			name:   "single_topic",
			topics: []model.Topic{{Name: "Pass", Count: 3}},
			want:   "Topic,Count\n\"Pass\",3\n",
		},
		{
			name:   "empty",
			topics: nil,
			want:   "Topic,Count\n",
		},
		{
			name:   "embedded_quotes_and_commas",
			topics: []model.Topic{{Name: `Say "hi", then`, Count: 0}},
			want:   "Topic,Count\n\"Say \"\"hi\"\", then\",0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalsCSV(tt.topics))
		})
	}
}

func TestEventsCSV(t *testing.T) {
	got := EventsCSV(sampleSnapshot().Timeline[:2])
	want := "Topic,Timestamp (Epoch),Timestamp (ISO)\n" +
		"\"Pass\",1705314645123,\"2024-01-15T10:30:45.123Z\"\n" +
		"\"Fail\",1705314646000,\"2024-01-15T10:30:46.000Z\"\n"
	assert.Equal(t, want, got)

	assert.Equal(t, "Topic,Timestamp (Epoch),Timestamp (ISO)\n", EventsCSV(nil))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "event-counter-totals-2024-01-15T10-30-45-123Z.csv", ExportFileName(KindTotals, "csv", exportTime))
	assert.Equal(t, "event-counter-events-2024-01-15T10-30-45-123Z.parquet", ExportFileName(KindEvents, "parquet", exportTime))
}

func TestWriteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	snap := sampleSnapshot()

	paths, err := WriteExport(dir, exportTime, snap)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	totals, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, TotalsCSV(snap.Topics), string(totals))
	assert.True(t, strings.HasSuffix(paths[0], "event-counter-totals-2024-01-15T10-30-45-123Z.csv"))

	events, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, EventsCSV(snap.Timeline), string(events))
}

func TestBuildStats(t *testing.T) {
	stats := BuildStats(sampleSnapshot(), model.MaxTimelineEvents)

	require.Len(t, stats.Rows, 2)
	assert.Equal(t, "Pass", stats.Rows[0].Topic)
	assert.Equal(t, "#27AE60", stats.Rows[0].Color)
	assert.InDelta(t, 0.75, stats.Rows[0].Share, 1e-9)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.Events)
	assert.Equal(t, 2000, stats.Capacity)
}

func TestNewFormatter(t *testing.T) {
	for _, name := range Outputs {
		f, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := New("xml")
	assert.Error(t, err)
}

func TestCSVFormatterWritesTotals(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, NewCSVFormatter().Format(&buf, BuildStats(sampleSnapshot(), 2000)))
	assert.Equal(t, "Topic,Count\n\"Pass\",3\n\"Fail\",1\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, NewJSONFormatter().Format(&buf, BuildStats(sampleSnapshot(), 2000)))

	var got Stats
	require.NoError(t, sonic.UnmarshalString(buf.String(), &got))
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Fail", got.Rows[1].Topic)
	assert.Contains(t, buf.String(), `"topics"`)

	buf.Reset()
	require.NoError(t, NewJSONFormatter().Format(&buf, Stats{}))
	assert.Contains(t, buf.String(), `"topics": []`)
}

func TestTableFormatter(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, NewTableFormatter().Format(&buf, BuildStats(sampleSnapshot(), 2000)))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TOPIC")
	for _, want := range []string{"Pass", "Fail", "75.0%", "25.0%", "Total", "Events: 4 / 2000"} {
		assert.Contains(t, out, want)
	}
}

func TestSummaryFormatter(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, NewSummaryFormatter().Format(&buf, BuildStats(sampleSnapshot(), 2000)))
	out := buf.String()
	assert.Contains(t, out, "Tally Summary")
	assert.Contains(t, out, "Events: 4 / 2000")
	assert.Contains(t, out, "75.0%")

	buf.Reset()
	require.NoError(t, NewSummaryFormatter().Format(&buf, Stats{Capacity: 2000}))
	assert.Contains(t, buf.String(), "No events recorded")
}

func TestTerminalFormattersDropControlCharacters(t *testing.T) {
	stats := Stats{
		Rows:     []StatsRow{{Topic: "\x1b[2JEvil", Color: "#3498DB", Count: 1, Share: 1}},
		Total:    1,
		Events:   1,
		Capacity: 2000,
	}
	for _, f := range []Formatter{NewSummaryFormatter(), NewTableFormatter()} {
		var buf strings.Builder
		require.NoError(t, f.Format(&buf, stats))
		assert.NotContains(t, buf.String(), "\x1b")
		assert.Contains(t, buf.String(), "[2JEvil")
	}
}

func TestWriteParquetExport(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot()

	path, err := WriteParquetExport(dir, exportTime, snap)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "event-counter-events-2024-01-15T10-30-45-123Z.parquet"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[EventRow](file)
	defer reader.Close()

	rows := make([]EventRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(snap.Timeline), n)
	assert.Equal(t, "Pass", rows[0].TopicName)
	assert.Equal(t, int64(1705314645123), rows[0].Timestamp)
	assert.True(t, rows[0].Time.Equal(time.UnixMilli(1705314645123)))
}
