package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/database"
)

const documentColumns = `id, owner_identity, original_digest, signed_digest, status,
	required_signer_count, ordering, title, purpose, signer_label, created_at, completed_at`

type documentRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewDocumentRepository(db *database.Database, logger *zap.Logger) repository.DocumentRepository {
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var doc entity.Document
	var completedAt sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.OwnerIdentity,
		&doc.OriginalDigest,
		&doc.SignedDigest,
		&doc.Status,
		&doc.RequiredSignerCount,
		&doc.Ordering,
		&doc.Metadata.Title,
		&doc.Metadata.Purpose,
		&doc.Metadata.SignerLabel,
		&doc.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		doc.CompletedAt = &t
	}
	return &doc, nil
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document, signers []entity.Signer) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertDoc := `
		INSERT INTO documents (id, owner_identity, original_digest, signed_digest, status,
			required_signer_count, ordering, title, purpose, signer_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, insertDoc,
		doc.ID,
		doc.OwnerIdentity,
		doc.OriginalDigest,
		doc.SignedDigest,
		doc.Status,
		doc.RequiredSignerCount,
		doc.Ordering,
		doc.Metadata.Title,
		doc.Metadata.Purpose,
		doc.Metadata.SignerLabel,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	insertSigner := `
		INSERT INTO signers (document_id, identity, sign_order, status)
		VALUES ($1, $2, $3, $4)
	`
	for _, s := range signers {
		if _, err := tx.ExecContext(ctx, insertSigner, s.DocumentID, s.Identity, s.Order, s.Status); err != nil {
			return fmt.Errorf("failed to insert signer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document creation: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.db.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document by id: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) GetSigners(ctx context.Context, documentID string) ([]entity.Signer, error) {
	query := `
		SELECT document_id, identity, sign_order, status
		FROM signers
		WHERE document_id = $1
		ORDER BY sign_order, identity
	`
	rows, err := r.db.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list signers: %w", err)
	}
	defer rows.Close()

	return collectSigners(rows)
}

func collectSigners(rows *sql.Rows) ([]entity.Signer, error) {
	var signers []entity.Signer
	for rows.Next() {
		var s entity.Signer
		if err := rows.Scan(&s.DocumentID, &s.Identity, &s.Order, &s.Status); err != nil {
			return nil, fmt.Errorf("failed to scan signer: %w", err)
		}
		signers = append(signers, s)
	}
	return signers, rows.Err()
}

func (r *documentRepository) FindByDigest(ctx context.Context, digest string) (*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE original_digest = $1 OR signed_digest = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	doc, err := scanDocument(r.db.DB.QueryRowContext(ctx, query, digest))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by digest: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) FindByOwnerAndDigest(ctx context.Context, owner, digest string) (*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_identity = $1 AND (original_digest = $2 OR signed_digest = $2)
		ORDER BY created_at DESC
		LIMIT 1
	`
	doc, err := scanDocument(r.db.DB.QueryRowContext(ctx, query, owner, digest))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document by owner and digest: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) ListByOwner(ctx context.Context, owner string, limit, offset int) ([]entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_identity = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.DB.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents by owner: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func (r *documentRepository) ListByStatus(ctx context.Context, status entity.DocumentStatus, limit int) ([]entity.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.db.DB.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents by status: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]entity.Document, error) {
	var docs []entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Mutate serializes all writers of one document on its row lock. The lock
// is held from the read through the commit, so no other mutator can
// interleave between validation and write.
func (r *documentRepository) Mutate(ctx context.Context, id string, fn func(ctx context.Context, tx repository.MutationTx) error) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	doc, err := scanDocument(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return entity.NewNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock document: %w", err)
	}

	if err := fn(ctx, &mutationTx{tx: tx, doc: doc}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document mutation: %w", err)
	}
	return nil
}
