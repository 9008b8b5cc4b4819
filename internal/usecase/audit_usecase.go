package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
)

type AuditUsecase interface {
	History(ctx context.Context, documentID string, page, perPage int) ([]entity.AuditEntry, error)
}

type auditUsecase struct {
	audit  repository.AuditRepository
	logger *zap.Logger
}

func NewAuditUsecase(audit repository.AuditRepository, logger *zap.Logger) AuditUsecase {
	return &auditUsecase{
		audit:  audit,
		logger: logger,
	}
}

func (u *auditUsecase) History(ctx context.Context, documentID string, page, perPage int) ([]entity.AuditEntry, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 50
	}
	return u.audit.ListByDocument(ctx, documentID, perPage, (page-1)*perPage)
}

// recordAudit appends an entry as a side effect of an operation. A failed
// append is logged but never fails the operation that produced it.
func recordAudit(ctx context.Context, audit repository.AuditRepository, logger *zap.Logger, documentID, actor, action, details string) {
	entry := &entity.AuditEntry{
		DocumentID:    documentID,
		ActorIdentity: actor,
		Action:        action,
		Details:       details,
		CreatedAt:     time.Now(),
	}
	if err := audit.Append(ctx, entry); err != nil {
		logger.Warn("Failed to record audit entry",
			zap.String("document_id", documentID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// invalidateCache drops the cached projection after a mutation. The store
// is the source of truth, so a failed invalidation is only logged.
func invalidateCache(ctx context.Context, cache repository.DocumentCache, logger *zap.Logger, documentID string) {
	if err := cache.Invalidate(ctx, documentID); err != nil {
		logger.Warn("Failed to invalidate document cache",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}
}
