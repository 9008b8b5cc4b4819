package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/database"
)

type auditRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewAuditRepository(db *database.Database, logger *zap.Logger) repository.AuditRepository {
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (document_id, actor_identity, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.DB.ExecContext(ctx, query,
		entry.DocumentID,
		entry.ActorIdentity,
		entry.Action,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("document_id", entry.DocumentID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByDocument(ctx context.Context, documentID string, limit, offset int) ([]entity.AuditEntry, error) {
	query := `
		SELECT id, document_id, actor_identity, action, details, created_at
		FROM audit_entries
		WHERE document_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.DB.QueryContext(ctx, query, documentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.ActorIdentity, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
