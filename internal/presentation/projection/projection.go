// Package projection derives chart-ready views from board state.
package projection

import (
	"strings"
	"unicode/utf8"

	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/util"
)

// AggregateView holds one entry per topic. Index i of Labels, Values and
// Colors always refers to the same topic.
type AggregateView struct {
	Labels []string
	Values []int
	Colors []string
}

// Aggregate projects topics in their board order.
func Aggregate(topics []model.Topic) AggregateView {
	v := AggregateView{
		Labels: make([]string, len(topics)),
		Values: make([]int, len(topics)),
		Colors: make([]string, len(topics)),
	}
	for i, t := range topics {
		v.Labels[i] = t.Name
		v.Values[i] = t.Count
		v.Colors[i] = t.Color
	}
	return v
}

// Len returns the number of slices.
func (v AggregateView) Len() int {
	return len(v.Labels)
}

// Total sums all values.
func (v AggregateView) Total() int {
	total := 0
	for _, n := range v.Values {
		total += n
	}
	return total
}

// Share returns slice i as a fraction of the total, or 0 when empty.
func (v AggregateView) Share(i int) float64 {
	total := v.Total()
	if total == 0 || i < 0 || i >= len(v.Values) {
		return 0
	}
	return float64(v.Values[i]) / float64(total)
}

// Segment is one unit-height block of the sequence strip.
type Segment struct {
	TopicID string
	Label   string
	Color   string
}

// SequenceView lists one segment per event, oldest first.
type SequenceView struct {
	Segments []Segment
}

// Sequence projects the event log. Colors and labels come from the current
// topic record so recolored topics recolor their history; events whose topic
// is gone get the placeholder label and color.
func Sequence(topics []model.Topic, timeline []model.TimelineEvent) SequenceView {
	byID := make(map[string]model.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}

	segments := make([]Segment, len(timeline))
	for i, ev := range timeline {
		seg := Segment{
			TopicID: ev.TopicID,
			Label:   model.MissingTopicLabel,
			Color:   model.MissingTopicColor,
		}
		if t, ok := byID[ev.TopicID]; ok {
			seg.Label = firstRune(t.Name)
			seg.Color = t.Color
		}
		segments[i] = seg
	}
	return SequenceView{Segments: segments}
}

// Tail returns at most the last n segments.
func (v SequenceView) Tail(n int) []Segment {
	if n <= 0 {
		return nil
	}
	if len(v.Segments) <= n {
		return v.Segments
	}
	return v.Segments[len(v.Segments)-n:]
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(util.Printable(s)))
	if size == 0 || r == utf8.RuneError {
		return model.MissingTopicLabel
	}
	return string(r)
}
