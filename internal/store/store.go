package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/models"
)

// Store reads and writes the portfolio State as JSON records.
type Store struct {
	records interfaces.RecordStore
	logger  *common.Logger
}

// New creates a Store over records.
func New(records interfaces.RecordStore, logger *common.Logger) *Store {
	return &Store{records: records, logger: logger}
}

// Load reads the persisted state.
func (s *Store) Load(ctx context.Context) (models.State, error) {
	var state models.State
	if err := load(ctx, s.records, interfaces.EntityHoldings, &state.Holdings); err != nil {
		return models.State{}, err
	}
	if err := load(ctx, s.records, interfaces.EntityTransactions, &state.Transactions); err != nil {
		return models.State{}, err
	}
	if err := load(ctx, s.records, interfaces.EntityDividends, &state.Dividends); err != nil {
		return models.State{}, err
	}
	return state, nil
}

func load[T any](ctx context.Context, rs interfaces.RecordStore, entity interfaces.Entity, out *[]T) error {
	raw, err := rs.LoadAll(ctx, entity)
	if err != nil {
		return &PersistenceError{Op: "load", Entity: entity, Err: err}
	}
	if len(raw) == 0 {
		*out = nil
		return nil
	}
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return &PersistenceError{Op: "load", Entity: entity, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		items = append(items, item)
	}
	*out = items
	return nil
}

func encode[T any](entity interfaces.Entity, items []T) ([][]byte, error) {
	out := make([][]byte, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, &PersistenceError{Op: "save", Entity: entity, Err: err}
		}
		out = append(out, b)
	}
	return out, nil
}

// Save replaces the persisted state. With a BatchSaver backend all three
// entities are written atomically; otherwise they are written in turn and,
// on failure, the entities already written are restored.
func (s *Store) Save(ctx context.Context, state models.State) error {
	batch := make(map[interfaces.Entity][][]byte, 3)
	var err error
	if batch[interfaces.EntityHoldings], err = encode(interfaces.EntityHoldings, state.Holdings); err != nil {
		return err
	}
	if batch[interfaces.EntityTransactions], err = encode(interfaces.EntityTransactions, state.Transactions); err != nil {
		return err
	}
	if batch[interfaces.EntityDividends], err = encode(interfaces.EntityDividends, state.Dividends); err != nil {
		return err
	}

	if saver, ok := s.records.(interfaces.BatchSaver); ok {
		if err := saver.SaveBatch(ctx, batch); err != nil {
			return &PersistenceError{Op: "save", Err: err}
		}
		return nil
	}
	return s.saveSequential(ctx, batch)
}

func (s *Store) saveSequential(ctx context.Context, batch map[interfaces.Entity][][]byte) error {
	previous := make(map[interfaces.Entity][][]byte, len(batch))
	for _, entity := range interfaces.Entities {
		prev, err := s.records.LoadAll(ctx, entity)
		if err != nil {
			return &PersistenceError{Op: "save", Entity: entity, Err: err}
		}
		previous[entity] = prev
	}

	var written []interfaces.Entity
	for _, entity := range interfaces.Entities {
		if err := s.records.SaveAll(ctx, entity, batch[entity]); err != nil {
			for _, done := range written {
				if rerr := s.records.SaveAll(ctx, done, previous[done]); rerr != nil {
					s.logger.Error().Str("entity", string(done)).Err(rerr).Msg("failed to restore records after save failure")
				}
			}
			return &PersistenceError{Op: "save", Entity: entity, Err: err}
		}
		written = append(written, entity)
	}
	return nil
}

// Clear removes all persisted records.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.records.ClearAll(ctx); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}
