package model

import "time"

// StorageKey is the key-value slot holding the persisted board state.
const StorageKey = "eventCounterData"

// Default topic names seeded on first start and after a reset
const (
	DefaultPassName = "Pass"
	DefaultFailName = "Fail"
)

// Board limits
const (
	MaxTimelineEvents  = 2000
	MaxTopicNameLength = 48
	AlertDuration      = 5 * time.Second
)

// MissingTopicColor and MissingTopicLabel are used by sequence segments whose
// topic no longer exists.
const (
	MissingTopicColor = "#BDC3C7"
	MissingTopicLabel = "?"
)
