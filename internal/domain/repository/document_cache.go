package repository

import (
	"context"

	"signtusk/internal/domain/entity"
)

// DocumentCache is a read-through projection of document records. The
// record store stays the source of truth; every mutating call invalidates
// the cached copy.
type DocumentCache interface {
	// Get returns nil without error on a cache miss.
	Get(ctx context.Context, id string) (*entity.Document, error)
	Set(ctx context.Context, doc *entity.Document) error
	Invalidate(ctx context.Context, id string) error
}
