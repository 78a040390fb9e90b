package store

import (
	"fmt"

	"github.com/bobmcallan/vire-folio/internal/interfaces"
)

// PersistenceError reports a failed read or write of one entity.
type PersistenceError struct {
	Op     string // "load", "save", "clear"
	Entity interfaces.Entity
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
