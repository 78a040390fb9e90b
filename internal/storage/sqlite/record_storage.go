// Package sqlite persists portfolio records in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	entity TEXT NOT NULL,
	seq INTEGER NOT NULL,
	payload BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (entity, seq)
);`

// Manager implements interfaces.StorageManager over SQLite.
type Manager struct {
	db      *sql.DB
	records *RecordStorage
}

// NewManager opens the database at cfg.Path and applies the schema.
func NewManager(logger *common.Logger, cfg *config.SQLiteConfig) (*Manager, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", cfg.Path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("SQLite storage manager initialized")

	return &Manager{db: db, records: &RecordStorage{db: db, logger: logger}}, nil
}

// RecordStore returns the record storage interface.
func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// RecordStorage implements interfaces.RecordStore and interfaces.BatchSaver.
type RecordStorage struct {
	db     *sql.DB
	logger *common.Logger
}

// LoadAll returns the entity's records in saved order.
func (s *RecordStorage) LoadAll(ctx context.Context, entity interfaces.Entity) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE entity = ? ORDER BY seq`, string(entity))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", entity, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", entity, err)
		}
		out = append(out, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", entity, err)
	}
	return out, nil
}

// SaveAll replaces the entity's records in one SQL transaction.
func (s *RecordStorage) SaveAll(ctx context.Context, entity interfaces.Entity, records [][]byte) error {
	return s.SaveBatch(ctx, map[interfaces.Entity][][]byte{entity: records})
}

// SaveBatch replaces several entities in one SQL transaction.
func (s *RecordStorage) SaveBatch(ctx context.Context, batch map[interfaces.Entity][][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, entity := range interfaces.Entities {
		records, ok := batch[entity]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE entity = ?`, string(entity)); err != nil {
			return fmt.Errorf("failed to replace %s: %w", entity, err)
		}
		for i, rec := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (entity, seq, payload, updated_at) VALUES (?, ?, ?, ?)`,
				string(entity), i, rec, now); err != nil {
				return fmt.Errorf("failed to insert %s record %d: %w", entity, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ClearAll removes every record.
func (s *RecordStorage) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	s.logger.Info().Msg("all records cleared")
	return nil
}
