package model

// Topic is a countable category shown as one button on the board.
type Topic struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// TimelineEvent records one increment. TopicName is a snapshot of the
// topic's name at the time of the increment.
type TimelineEvent struct {
	TopicID      string `json:"topicId"`
	TopicName    string `json:"topicName"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
	ISODatestamp string `json:"isoDatestamp"`
}

// Snapshot is the persisted form of the board state.
type Snapshot struct {
	Topics   []Topic         `json:"topics"`
	Timeline []TimelineEvent `json:"timeline"`
}

// IsEmpty reports whether the snapshot carries no topics.
func (s Snapshot) IsEmpty() bool {
	return len(s.Topics) == 0
}

// Clone returns a deep copy so callers can't mutate store-owned slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Topics:   make([]Topic, len(s.Topics)),
		Timeline: make([]TimelineEvent, len(s.Timeline)),
	}
	copy(out.Topics, s.Topics)
	copy(out.Timeline, s.Timeline)
	return out
}

// CountFor returns the number of timeline events recorded against topicID.
func (s Snapshot) CountFor(topicID string) int {
	n := 0
	for _, ev := range s.Timeline {
		if ev.TopicID == topicID {
			n++
		}
	}
	return n
}
