package interfaces

import "context"

// Entity names one persisted collection.
type Entity string

const (
	EntityHoldings     Entity = "holdings"
	EntityTransactions Entity = "transactions"
	EntityDividends    Entity = "dividends"
)

// Entities lists every persisted collection in save order.
var Entities = []Entity{EntityHoldings, EntityTransactions, EntityDividends}

// StorageManager owns a persistence backend.
// Implementations can be swapped (BadgerDB, SQLite, in-memory).
type StorageManager interface {
	RecordStore() RecordStore
	Close() error
}

// RecordStore persists whole collections of encoded records.
// SaveAll replaces the entity's records atomically.
type RecordStore interface {
	LoadAll(ctx context.Context, entity Entity) ([][]byte, error)
	SaveAll(ctx context.Context, entity Entity, records [][]byte) error
	ClearAll(ctx context.Context) error
}

// BatchSaver is implemented by backends that can replace several entities in
// one atomic write.
type BatchSaver interface {
	SaveBatch(ctx context.Context, batch map[Entity][][]byte) error
}
