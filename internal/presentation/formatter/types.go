package formatter

import (
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/presentation/projection"
)

// StatsRow is one topic's line in the stats report.
type StatsRow struct {
	Topic string  `json:"topic"`
	Color string  `json:"color"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Stats is the aggregate report rendered by the stats command.
type Stats struct {
	Rows     []StatsRow `json:"topics"`
	Total    int        `json:"total"`
	Events   int        `json:"events"`
	Capacity int        `json:"capacity"`
}

// BuildStats derives the report from a snapshot.
func BuildStats(snap model.Snapshot, capacity int) Stats {
	view := projection.Aggregate(snap.Topics)
	rows := make([]StatsRow, view.Len())
	for i := range rows {
		rows[i] = StatsRow{
			Topic: view.Labels[i],
			Color: view.Colors[i],
			Count: view.Values[i],
			Share: view.Share(i),
		}
	}
	return Stats{
		Rows:     rows,
		Total:    view.Total(),
		Events:   len(snap.Timeline),
		Capacity: capacity,
	}
}
