package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

// Manager implements interfaces.StorageManager on an embedded Badger
// directory. Only one process may hold the directory open.
type Manager struct {
	store   *badgerhold.Store
	records *RecordStorage
	path    string
}

// NewManager opens (creating if needed) the Badger database at cfg.Path.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (*Manager, error) {
	store, err := openStore(cfg.Path)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("path", cfg.Path).Msg("Badger storage opened")

	return &Manager{
		store:   store,
		records: NewRecordStorage(store, logger),
		path:    cfg.Path,
	}, nil
}

func openStore(path string) (*badgerhold.Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}
	return store, nil
}

// RecordStore returns the record storage interface.
func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

// Close releases the directory lock.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}
