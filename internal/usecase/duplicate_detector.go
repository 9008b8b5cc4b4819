package usecase

import (
	"context"

	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
)

// DuplicatePolicy is the classification of a new document's digest against
// the owner's existing documents.
type DuplicatePolicy string

const (
	PolicyAllow   DuplicatePolicy = "allow"
	PolicyBlock   DuplicatePolicy = "block"
	PolicyConfirm DuplicatePolicy = "confirm"
)

// DuplicateDetector classifies; it never mutates state. The caller
// (upload/initiate) is responsible for acting on the classification.
type DuplicateDetector struct {
	docs   repository.DocumentRepository
	logger *zap.Logger
}

func NewDuplicateDetector(docs repository.DocumentRepository, logger *zap.Logger) *DuplicateDetector {
	return &DuplicateDetector{
		docs:   docs,
		logger: logger,
	}
}

// Classify returns the policy for a new document with the given digest and
// owner, plus the matching document when one exists.
func (d *DuplicateDetector) Classify(ctx context.Context, owner, digest string) (DuplicatePolicy, *entity.Document, error) {
	existing, err := d.docs.FindByOwnerAndDigest(ctx, owner, digest)
	if err != nil {
		return "", nil, err
	}
	if existing == nil {
		return PolicyAllow, nil, nil
	}

	switch existing.Status {
	case entity.StatusCompleted:
		// Never re-sign byte-identical content that is already finalized.
		return PolicyBlock, existing, nil
	case entity.StatusRejected:
		// A rejected attempt does not stand in the way of a fresh one.
		return PolicyAllow, existing, nil
	default:
		// The prior attempt may be abandoned; the caller chooses.
		d.logger.Info("Duplicate digest found in progress",
			zap.String("owner", owner),
			zap.String("existing_id", existing.ID),
			zap.String("existing_status", string(existing.Status)),
		)
		return PolicyConfirm, existing, nil
	}
}
