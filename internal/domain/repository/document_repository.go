package repository

import (
	"context"

	"signtusk/internal/domain/entity"
)

// MutationTx is the view a mutating operation gets of a single document
// while the store holds its row lock. All writes issued through it commit
// or roll back together.
type MutationTx interface {
	// Document returns the row as read under the lock.
	Document() *entity.Document
	Signers(ctx context.Context) ([]entity.Signer, error)
	UpdateDocument(ctx context.Context, doc *entity.Document) error
	UpdateSignerStatus(ctx context.Context, identity string, status entity.SignerStatus) error
	InsertSignature(ctx context.Context, sig *entity.Signature) error
}

type DocumentRepository interface {
	// Create persists the document and its fixed signer set in one
	// transaction.
	Create(ctx context.Context, doc *entity.Document, signers []entity.Signer) error
	// GetByID returns nil without error when no document exists.
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetSigners(ctx context.Context, documentID string) ([]entity.Signer, error)
	// FindByDigest matches either the original or the signed digest,
	// regardless of owner. Returns nil without error on no match.
	FindByDigest(ctx context.Context, digest string) (*entity.Document, error)
	// FindByOwnerAndDigest scopes the digest match to one owner, for
	// duplicate detection.
	FindByOwnerAndDigest(ctx context.Context, owner, digest string) (*entity.Document, error)
	ListByOwner(ctx context.Context, owner string, limit, offset int) ([]entity.Document, error)
	ListByStatus(ctx context.Context, status entity.DocumentStatus, limit int) ([]entity.Document, error)
	// Mutate runs fn as a single atomic read-modify-write against the
	// document. No other mutator interleaves between the read and the
	// write for the same document.
	Mutate(ctx context.Context, id string, fn func(ctx context.Context, tx MutationTx) error) error
}
