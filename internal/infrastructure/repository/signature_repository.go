package repository

import (
	"context"
	"fmt"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/database"
)

type signatureRepository struct {
	db *database.Database
}

func NewSignatureRepository(db *database.Database) repository.SignatureRepository {
	return &signatureRepository{
		db: db,
	}
}

func (r *signatureRepository) ListByDocument(ctx context.Context, documentID string) ([]entity.Signature, error) {
	query := `
		SELECT id, document_id, signer_identity, digest_signed, signature_value, signed_at
		FROM signatures
		WHERE document_id = $1
		ORDER BY signed_at, id
	`
	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}
	defer rows.Close()

	var sigs []entity.Signature
	for rows.Next() {
		var s entity.Signature
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.SignerIdentity, &s.DigestSigned, &s.SignatureValue, &s.SignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}
