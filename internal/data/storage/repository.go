package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-tally/internal/core/model"
	"github.com/penwyp/go-tally/internal/util"
)

// Repository stores the board snapshot as JSON in one KV slot.
type Repository struct {
	kv  KV
	key string
}

// NewRepository returns a repository bound to the standard slot key.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv, key: model.StorageKey}
}

// Key returns the slot key the repository reads and writes.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the persisted snapshot. A missing slot or unparseable content
// yields an empty snapshot and no error; only backend failures are returned.
func (r *Repository) Load(ctx context.Context) (model.Snapshot, error) {
	data, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			util.LogInfo("No saved board found, starting fresh")
			return model.Snapshot{}, nil
		}
		return model.Snapshot{}, fmt.Errorf("failed to load board: %w", err)
	}
	return Decode(data), nil
}

// Save writes the snapshot to the slot.
func (r *Repository) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}

// Encode marshals a snapshot into its persisted JSON form.
func Encode(snap model.Snapshot) ([]byte, error) {
	if snap.Topics == nil {
		snap.Topics = []model.Topic{}
	}
	if snap.Timeline == nil {
		snap.Timeline = []model.TimelineEvent{}
	}
	data, err := sonic.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}
	return data, nil
}

// Decode parses persisted JSON. Malformed input is logged and treated as an
// empty snapshot.
func Decode(data []byte) model.Snapshot {
	var snap model.Snapshot
	if len(data) == 0 {
		return snap
	}
	if err := sonic.Unmarshal(data, &snap); err != nil {
		util.LogWarn("Ignoring unreadable saved board", util.F("error", err.Error()))
		return model.Snapshot{}
	}
	return snap
}
