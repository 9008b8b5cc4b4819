package repository

import (
	"context"

	"signtusk/internal/domain/entity"
)

// AuditRepository is the append-only audit sink. Entries are never updated
// or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByDocument(ctx context.Context, documentID string, limit, offset int) ([]entity.AuditEntry, error)
}
