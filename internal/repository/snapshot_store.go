package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"EarningsPull/internal/domain/models"
	"EarningsPull/pkg/blob"
)

// BlobSnapshotStore persists the whole cache as one JSON blob. Any blob
// backend works; file and redis are wired in practice. There is no schema
// versioning: a format change means rebuilding the cache from upstream.
type BlobSnapshotStore struct {
	store blob.Store
}

func NewBlobSnapshotStore(store blob.Store) *BlobSnapshotStore {
	return &BlobSnapshotStore{store: store}
}

// Load reads the persisted snapshot. A missing blob is an empty cache, not
// an error; a corrupt blob is surfaced so the operator can decide to rebuild.
func (s *BlobSnapshotStore) Load(ctx context.Context) (models.Snapshot, error) {
	data, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return make(models.Snapshot), nil
		}
		return nil, fmt.Errorf("load snapshot blob: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap == nil {
		snap = make(models.Snapshot)
	}
	return snap, nil
}

// Save overwrites the persisted snapshot wholesale.
func (s *BlobSnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot blob: %w", err)
	}
	return nil
}

func (s *BlobSnapshotStore) Close() error { return s.store.Close() }
