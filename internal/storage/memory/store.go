// Package memory is an in-process RecordStore used for ephemeral runs and
// tests. Failures can be injected per entity.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

// Store keeps records in a map guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	data     map[interfaces.Entity][][]byte
	failSave map[interfaces.Entity]error
	failLoad error
	saves    int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		data:     make(map[interfaces.Entity][][]byte),
		failSave: make(map[interfaces.Entity]error),
	}
}

// FailSave makes every later SaveAll of entity return err. A nil err clears it.
func (s *Store) FailSave(entity interfaces.Entity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failSave, entity)
		return
	}
	s.failSave[entity] = err
}

// FailLoad makes every later LoadAll return err. A nil err clears it.
func (s *Store) FailLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLoad = err
}

// Saves reports how many successful SaveAll calls were made.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// LoadAll returns a copy of the entity's records.
func (s *Store) LoadAll(_ context.Context, entity interfaces.Entity) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	return cloneRecords(s.data[entity]), nil
}

// SaveAll replaces the entity's records unless a failure is injected.
func (s *Store) SaveAll(_ context.Context, entity interfaces.Entity, records [][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSave[entity]; err != nil {
		return fmt.Errorf("save %s: %w", entity, err)
	}
	s.data[entity] = cloneRecords(records)
	s.saves++
	return nil
}

// ClearAll removes every record.
func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[interfaces.Entity][][]byte)
	return nil
}

// RecordStore lets Store act as its own StorageManager.
func (s *Store) RecordStore() interfaces.RecordStore { return s }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneRecords(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}
	out := make([][]byte, len(in))
	for i, r := range in {
		out[i] = append([]byte(nil), r...)
	}
	return out
}
