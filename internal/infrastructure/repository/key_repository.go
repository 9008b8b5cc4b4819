package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/database"
)

type keyRepository struct {
	db *database.Database
}

func NewKeyRepository(db *database.Database) repository.KeyRepository {
	return &keyRepository{
		db: db,
	}
}

func (r *keyRepository) SavePublicKey(ctx context.Context, identity, publicKeyPEM string) error {
	// Upsert: re-registering an identity replaces its key
	query := `
		INSERT INTO signer_keys (identity, public_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT(identity) DO UPDATE SET
			public_key = EXCLUDED.public_key,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.DB.ExecContext(ctx, query, identity, publicKeyPEM, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}
	return nil
}

func (r *keyRepository) GetPublicKey(ctx context.Context, identity string) (string, error) {
	query := `SELECT public_key FROM signer_keys WHERE identity = $1`

	var publicKey string
	err := r.db.DB.QueryRowContext(ctx, query, identity).Scan(&publicKey)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get public key: %w", err)
	}
	return publicKey, nil
}
