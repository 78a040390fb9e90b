package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// Parser turns the raw bytes of a brokerage export into a ParseResult.
// filename is a hint used for file-type detection.
type Parser interface {
	Parse(ctx context.Context, data []byte, filename string) (*models.ParseResult, error)
}
