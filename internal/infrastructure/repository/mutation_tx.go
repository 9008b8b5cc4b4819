package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"signtusk/internal/domain/entity"
)

// mutationTx implements repository.MutationTx over an open transaction that
// holds the document row lock.
type mutationTx struct {
	tx  *sql.Tx
	doc *entity.Document
}

func (m *mutationTx) Document() *entity.Document {
	return m.doc
}

func (m *mutationTx) Signers(ctx context.Context) ([]entity.Signer, error) {
	query := `
		SELECT document_id, identity, sign_order, status
		FROM signers
		WHERE document_id = $1
		ORDER BY sign_order, identity
	`
	rows, err := m.tx.QueryContext(ctx, query, m.doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signers: %w", err)
	}
	defer rows.Close()

	return collectSigners(rows)
}

func (m *mutationTx) UpdateDocument(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET status = $1, signed_digest = $2, completed_at = $3
		WHERE id = $4
	`
	var completedAt sql.NullTime
	if doc.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *doc.CompletedAt, Valid: true}
	}

	_, err := m.tx.ExecContext(ctx, query, doc.Status, doc.SignedDigest, completedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	m.doc = doc
	return nil
}

func (m *mutationTx) UpdateSignerStatus(ctx context.Context, identity string, status entity.SignerStatus) error {
	query := `
		UPDATE signers
		SET status = $1
		WHERE document_id = $2 AND identity = $3
	`
	_, err := m.tx.ExecContext(ctx, query, status, m.doc.ID, identity)
	if err != nil {
		return fmt.Errorf("failed to update signer status: %w", err)
	}
	return nil
}

func (m *mutationTx) InsertSignature(ctx context.Context, sig *entity.Signature) error {
	query := `
		INSERT INTO signatures (document_id, signer_identity, digest_signed, signature_value, signed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := m.tx.QueryRowContext(ctx, query,
		sig.DocumentID,
		sig.SignerIdentity,
		sig.DigestSigned,
		sig.SignatureValue,
		sig.SignedAt,
	).Scan(&sig.ID)

	if err != nil {
		// The unique (document_id, signer_identity) constraint is the
		// last line of defense against double-signing.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entity.NewAlreadyActed(sig.SignerIdentity, entity.SignerSigned, m.doc.Status)
		}
		return fmt.Errorf("failed to insert signature: %w", err)
	}
	return nil
}
