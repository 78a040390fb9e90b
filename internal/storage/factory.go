package storage

import (
	"fmt"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/storage/badger"
	"github.com/bobmcallan/vire-folio/internal/storage/memory"
	"github.com/bobmcallan/vire-folio/internal/storage/sqlite"
)

// NewStorageManager creates the storage manager selected by cfg.Storage.Backend.
func NewStorageManager(logger *common.Logger, cfg *config.Config) (interfaces.StorageManager, error) {
	switch cfg.Storage.Backend {
	case "", "badger":
		return badger.NewManager(logger, &cfg.Storage.Badger)
	case "sqlite":
		return sqlite.NewManager(logger, &cfg.Storage.SQLite)
	case "memory":
		logger.Warn().Msg("using in-memory storage; data is lost on exit")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
