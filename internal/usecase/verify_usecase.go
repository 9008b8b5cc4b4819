package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"signtusk/internal/config"
	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/crypto"
)

type VerifyUsecase interface {
	// Verify recomputes the digest of the presented bytes and re-validates
	// every stored signature. A mismatch is a normal valid:false result,
	// never an error.
	Verify(ctx context.Context, fileBytes []byte) (*entity.VerificationResult, error)
	// ResolveTag resolves a verification-link payload ("DS:<id>" or
	// "MS:<id>") into the document's verification summary.
	ResolveTag(ctx context.Context, tag string) (*entity.VerificationResult, error)
}

type verifyUsecase struct {
	config *config.Config
	docs   repository.DocumentRepository
	sigs   repository.SignatureRepository
	audit  repository.AuditRepository
	crypto crypto.Service
	logger *zap.Logger
}

func NewVerifyUsecase(
	cfg *config.Config,
	docs repository.DocumentRepository,
	sigs repository.SignatureRepository,
	audit repository.AuditRepository,
	cryptoSvc crypto.Service,
	logger *zap.Logger,
) VerifyUsecase {
	return &verifyUsecase{
		config: cfg,
		docs:   docs,
		sigs:   sigs,
		audit:  audit,
		crypto: cryptoSvc,
		logger: logger,
	}
}

func (u *verifyUsecase) Verify(ctx context.Context, fileBytes []byte) (*entity.VerificationResult, error) {
	digest := u.crypto.Digest(fileBytes)

	var doc *entity.Document
	err := u.retryRead(func() error {
		var err error
		doc, err = u.docs.FindByDigest(ctx, digest)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}
	if doc == nil {
		u.logger.Info("Verification: no document matches digest",
			zap.String("digest", digest),
		)
		return &entity.VerificationResult{
			Valid:  false,
			Reason: entity.ReasonNotFound,
		}, nil
	}

	result, err := u.buildResult(ctx, doc)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, u.audit, u.logger, doc.ID, "verifier", entity.ActionVerify,
		fmt.Sprintf("valid=%t reason=%s", result.Valid, result.Reason))
	return result, nil
}

func (u *verifyUsecase) ResolveTag(ctx context.Context, tag string) (*entity.VerificationResult, error) {
	_, documentID, err := entity.ParseVerifyTag(tag)
	if err != nil {
		return nil, entity.NewInvalidFile(err.Error())
	}

	var doc *entity.Document
	err = u.retryRead(func() error {
		var err error
		doc, err = u.docs.GetByID(ctx, documentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}
	if doc == nil {
		return &entity.VerificationResult{
			Valid:  false,
			Reason: entity.ReasonNotFound,
		}, nil
	}

	result, err := u.buildResult(ctx, doc)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, u.audit, u.logger, doc.ID, "verifier", entity.ActionVerify,
		fmt.Sprintf("tag=%s valid=%t reason=%s", tag, result.Valid, result.Reason))
	return result, nil
}

// buildResult re-validates every stored signature over the digest that was
// actually signed, then applies the completeness rule: partial signatures
// fail closed even when individually correct.
func (u *verifyUsecase) buildResult(ctx context.Context, doc *entity.Document) (*entity.VerificationResult, error) {
	var sigs []entity.Signature
	err := u.retryRead(func() error {
		var err error
		sigs, err = u.sigs.ListByDocument(ctx, doc.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("signature lookup failed: %w", err)
	}

	allValid := len(sigs) > 0
	checks := make([]entity.SignatureCheck, 0, len(sigs))
	for _, sig := range sigs {
		valid, err := u.crypto.Verify(ctx, sig.DigestSigned, sig.SignatureValue, sig.SignerIdentity)
		if err != nil {
			// Primitive/store failure, not an integrity finding
			return nil, fmt.Errorf("signature verification failed: %w", err)
		}
		if !valid {
			allValid = false
		}
		checks = append(checks, entity.SignatureCheck{
			SignerIdentity: sig.SignerIdentity,
			Valid:          valid,
			SignedAt:       sig.SignedAt,
		})
	}

	// Completeness: a multi-signer document must carry every required
	// signature and be completed; a mid-transition window (all signatures
	// in, status not yet flipped) reads as not yet valid. Single-signer
	// documents must be signed or completed.
	var complete bool
	if doc.IsMultiSigner() {
		complete = len(sigs) == doc.RequiredSignerCount && doc.Status == entity.StatusCompleted
	} else {
		complete = doc.Status == entity.StatusSigned || doc.Status == entity.StatusCompleted
	}

	reason := entity.ReasonNone
	switch {
	case !complete:
		reason = entity.ReasonIncomplete
	case !allValid:
		reason = entity.ReasonMismatch
	}

	metadata := doc.Metadata
	return &entity.VerificationResult{
		Valid:         allValid && complete,
		Reason:        reason,
		DocumentID:    doc.ID,
		Status:        doc.Status,
		SignedCount:   len(sigs),
		RequiredCount: doc.RequiredSignerCount,
		Metadata:      &metadata,
		Signatures:    checks,
	}, nil
}

// retryRead retries an idempotent read a bounded number of times. Mutating
// operations are never auto-retried.
func (u *verifyUsecase) retryRead(fn func() error) error {
	attempts := u.config.Signing.ReadRetries
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	return err
}
