package repository

import (
	"context"

	"signtusk/internal/domain/entity"
)

// SignatureRepository reads signature rows. Inserts happen only inside a
// document mutation (MutationTx.InsertSignature), never directly.
type SignatureRepository interface {
	ListByDocument(ctx context.Context, documentID string) ([]entity.Signature, error)
}
