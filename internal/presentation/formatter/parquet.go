package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/util"
)

// EventRow is the columnar form of a timeline event.
type EventRow struct {
	TopicID   string    `parquet:"topic_id,snappy"`
	TopicName string    `parquet:"topic_name,snappy"`
	Timestamp int64     `parquet:"timestamp_ms,snappy"`
	Time      time.Time `parquet:"event_time,snappy"`
}

// EventRows converts the timeline into parquet rows.
func EventRows(timeline []model.TimelineEvent) []EventRow {
	rows := make([]EventRow, len(timeline))
	for i, ev := range timeline {
		rows[i] = EventRow{
			TopicID:   ev.TopicID,
			TopicName: ev.TopicName,
			Timestamp: ev.Timestamp,
			Time:      time.UnixMilli(ev.Timestamp).UTC(),
		}
	}
	return rows
}

// WriteEventsParquet writes the timeline to a parquet file at outputPath.
func WriteEventsParquet(timeline []model.TimelineEvent, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[EventRow](file)
	if _, err := writer.Write(EventRows(timeline)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteParquetExport writes the events parquet file into dir and returns its
// path.
func WriteParquetExport(dir string, now time.Time, snap model.Snapshot) (string, error) {
	if err := util.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(KindEvents, "parquet", now))
	if err := WriteEventsParquet(snap.Timeline, path); err != nil {
		return "", err
	}
	util.LogInfo("Exported parquet", util.F("path", path), util.F("events", len(snap.Timeline)))
	return path, nil
}
