package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

// RecordEntry holds every record of one entity under a single key.
type RecordEntry struct {
	Entity    string `badgerhold:"key"`
	Records   [][]byte
	UpdatedAt time.Time
}

// RecordStorage implements interfaces.RecordStore and interfaces.BatchSaver.
type RecordStorage struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewRecordStorage creates a record store on an open badgerhold store.
func NewRecordStorage(store *badgerhold.Store, logger *common.Logger) *RecordStorage {
	return &RecordStorage{store: store, logger: logger}
}

// LoadAll returns the entity's records, or nil when none were saved.
func (s *RecordStorage) LoadAll(_ context.Context, entity interfaces.Entity) ([][]byte, error) {
	var entry RecordEntry
	err := s.store.Get(string(entity), &entry)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", entity, err)
	}
	return entry.Records, nil
}

// SaveAll replaces the entity's records in one write.
func (s *RecordStorage) SaveAll(_ context.Context, entity interfaces.Entity, records [][]byte) error {
	entry := RecordEntry{Entity: string(entity), Records: records, UpdatedAt: time.Now().UTC()}
	if err := s.store.Upsert(string(entity), &entry); err != nil {
		return fmt.Errorf("failed to save %s: %w", entity, err)
	}
	s.logger.Debug().Str("entity", string(entity)).Int("records", len(records)).Msg("records saved")
	return nil
}

// SaveBatch replaces several entities inside one Badger transaction.
func (s *RecordStorage) SaveBatch(_ context.Context, batch map[interfaces.Entity][][]byte) error {
	now := time.Now().UTC()
	store := s.store
	err := store.Badger().Update(func(tx *badger.Txn) error {
		for _, entity := range interfaces.Entities {
			records, ok := batch[entity]
			if !ok {
				continue
			}
			entry := RecordEntry{Entity: string(entity), Records: records, UpdatedAt: now}
			if err := store.TxUpsert(tx, string(entity), &entry); err != nil {
				return fmt.Errorf("%s: %w", entity, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

// ClearAll removes every entity.
func (s *RecordStorage) ClearAll(_ context.Context) error {
	if err := s.store.DeleteMatching(&RecordEntry{}, nil); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	s.logger.Info().Msg("all records cleared")
	return nil
}
