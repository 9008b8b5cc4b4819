package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"signtusk/internal/config"
	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/crypto"
	"signtusk/internal/lifecycle"
)

// Decision actions accepted by Decide.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

type UploadRequest struct {
	Bytes         []byte
	OwnerIdentity string
	Metadata      entity.Metadata
	// ConfirmDuplicate lets the caller proceed past a "confirm"
	// duplicate classification.
	ConfirmDuplicate bool
}

type UploadResult struct {
	Document      *entity.Document `json:"document"`
	PreviewHandle string           `json:"preview_handle"`
}

type SignRequest struct {
	DocumentID      string
	SigningIdentity string
	// Credential is the signer's private key PEM, passed through to the
	// signing primitive and never persisted.
	Credential string
	// SignedArtifact is the signature-embedded bytes rendered by the
	// caller; its digest becomes the document's signedDigest.
	SignedArtifact []byte
}

type SignResult struct {
	SignedDigest   string `json:"signed_digest"`
	SignatureValue string `json:"signature_value"`
}

type LifecycleUsecase interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	Preview(ctx context.Context, documentID, actor string) (*entity.Document, error)
	Decide(ctx context.Context, documentID, actor, action string) (*entity.Document, error)
	Sign(ctx context.Context, req SignRequest) (*SignResult, error)
	// Finalize is idempotent and may be driven by a background
	// collaborator rather than the signer.
	Finalize(ctx context.Context, documentID, actor string) (*entity.Document, error)
	Get(ctx context.Context, documentID string) (*entity.Document, error)
	GetSigners(ctx context.Context, documentID string) ([]entity.Signer, error)
	ListByOwner(ctx context.Context, owner string, page, perPage int) ([]entity.Document, error)
}

type lifecycleUsecase struct {
	config   *config.Config
	docs     repository.DocumentRepository
	audit    repository.AuditRepository
	cache    repository.DocumentCache
	crypto   crypto.Service
	detector *DuplicateDetector
	sm       *lifecycle.StateMachine
	logger   *zap.Logger
}

func NewLifecycleUsecase(
	cfg *config.Config,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	cache repository.DocumentCache,
	cryptoSvc crypto.Service,
	detector *DuplicateDetector,
	sm *lifecycle.StateMachine,
	logger *zap.Logger,
) LifecycleUsecase {
	return &lifecycleUsecase{
		config:   cfg,
		docs:     docs,
		audit:    audit,
		cache:    cache,
		crypto:   cryptoSvc,
		detector: detector,
		sm:       sm,
		logger:   logger,
	}
}

func (u *lifecycleUsecase) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	u.logger.Info("Uploading document",
		zap.String("owner", req.OwnerIdentity),
		zap.String("title", req.Metadata.Title),
		zap.Int("size", len(req.Bytes)),
	)

	if len(req.Bytes) == 0 {
		return nil, entity.NewInvalidFile("file bytes are required")
	}
	if req.OwnerIdentity == "" {
		return nil, entity.NewInvalidFile("owner identity is required")
	}

	digest := u.crypto.Digest(req.Bytes)

	policy, existing, err := u.detector.Classify(ctx, req.OwnerIdentity, digest)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	switch policy {
	case PolicyBlock:
		return nil, entity.NewDuplicateDocument(existing.Status,
			"an identical document has already been signed and finalized")
	case PolicyConfirm:
		if !req.ConfirmDuplicate {
			return nil, entity.NewDuplicateDocument(existing.Status,
				"an identical document is already in progress; retry with confirm=true to proceed")
		}
	}

	doc := &entity.Document{
		ID:                  uuid.NewString(),
		OwnerIdentity:       req.OwnerIdentity,
		OriginalDigest:      digest,
		Status:              entity.StatusUploaded,
		RequiredSignerCount: 1,
		Ordering:            entity.OrderingParallel,
		Metadata:            req.Metadata,
		CreatedAt:           time.Now(),
	}
	signers := []entity.Signer{
		{DocumentID: doc.ID, Identity: req.OwnerIdentity, Order: 1, Status: entity.SignerPending},
	}

	if err := u.docs.Create(ctx, doc, signers); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	u.recordAudit(ctx, doc.ID, req.OwnerIdentity, entity.ActionUpload, "digest "+digest)

	u.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("digest", digest),
	)

	return &UploadResult{
		Document:      doc,
		PreviewHandle: entity.VerifyTag(doc),
	}, nil
}

func (u *lifecycleUsecase) Preview(ctx context.Context, documentID, actor string) (*entity.Document, error) {
	var result *entity.Document

	err := u.docs.Mutate(ctx, documentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()
		if doc.OwnerIdentity != actor {
			return entity.NewUnauthorized(actor, doc.Status)
		}

		// Idempotent: previewing twice is a no-op
		if doc.Status == entity.StatusPreviewed {
			result = doc
			return nil
		}
		if !u.sm.CanTransition(doc.Status, entity.StatusPreviewed) {
			return entity.NewInvalidTransition(doc.Status, "preview")
		}

		doc.Status = entity.StatusPreviewed
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.recordAudit(ctx, documentID, actor, entity.ActionPreview, "")
	u.invalidate(ctx, documentID)
	return result, nil
}

func (u *lifecycleUsecase) Decide(ctx context.Context, documentID, actor, action string) (*entity.Document, error) {
	var target entity.DocumentStatus
	var auditAction string
	switch action {
	case DecisionAccept:
		target = entity.StatusAccepted
		auditAction = entity.ActionAccept
	case DecisionReject:
		target = entity.StatusRejected
		auditAction = entity.ActionReject
	default:
		return nil, fmt.Errorf("decision action must be %q or %q", DecisionAccept, DecisionReject)
	}

	var result *entity.Document
	err := u.docs.Mutate(ctx, documentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()
		if doc.OwnerIdentity != actor {
			return entity.NewUnauthorized(actor, doc.Status)
		}
		if !u.sm.CanTransition(doc.Status, target) {
			return entity.NewInvalidTransition(doc.Status, action)
		}

		doc.Status = target
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		if target == entity.StatusRejected {
			if err := tx.UpdateSignerStatus(ctx, actor, entity.SignerRejected); err != nil {
				return err
			}
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.recordAudit(ctx, documentID, actor, auditAction, "")
	u.invalidate(ctx, documentID)

	u.logger.Info("Document decision applied",
		zap.String("document_id", documentID),
		zap.String("action", action),
	)
	return result, nil
}

func (u *lifecycleUsecase) Sign(ctx context.Context, req SignRequest) (*SignResult, error) {
	u.logger.Info("Signing document",
		zap.String("document_id", req.DocumentID),
		zap.String("identity", req.SigningIdentity),
	)

	if len(req.SignedArtifact) == 0 {
		return nil, entity.NewInvalidFile("signed artifact bytes are required")
	}

	var result *SignResult
	err := u.docs.Mutate(ctx, req.DocumentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()
		if doc.Status != entity.StatusAccepted {
			return entity.NewInvalidTransition(doc.Status, "sign")
		}

		signers, err := tx.Signers(ctx)
		if err != nil {
			return err
		}
		signer := findSigner(signers, req.SigningIdentity)
		if signer == nil {
			return entity.NewUnauthorized(req.SigningIdentity, doc.Status)
		}
		if signer.Status != entity.SignerPending {
			return entity.NewAlreadyActed(req.SigningIdentity, signer.Status, doc.Status)
		}

		// The signature is produced over the pre-embedding content. No
		// state is written before the primitive succeeds.
		signCtx, cancel := context.WithTimeout(ctx, u.config.Signing.Timeout)
		defer cancel()
		signatureValue, err := u.crypto.Sign(signCtx, doc.OriginalDigest, req.Credential)
		if err != nil {
			return entity.NewSigningFailed(err)
		}

		if err := tx.InsertSignature(ctx, &entity.Signature{
			DocumentID:     doc.ID,
			SignerIdentity: req.SigningIdentity,
			DigestSigned:   doc.OriginalDigest,
			SignatureValue: signatureValue,
			SignedAt:       time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.UpdateSignerStatus(ctx, req.SigningIdentity, entity.SignerSigned); err != nil {
			return err
		}

		doc.SignedDigest = u.crypto.Digest(req.SignedArtifact)
		doc.Status = entity.StatusSigned
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		result = &SignResult{
			SignedDigest:   doc.SignedDigest,
			SignatureValue: signatureValue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.recordAudit(ctx, req.DocumentID, req.SigningIdentity, entity.ActionSign, "")
	u.invalidate(ctx, req.DocumentID)

	u.logger.Info("Document signed",
		zap.String("document_id", req.DocumentID),
		zap.String("signed_digest", result.SignedDigest),
	)
	return result, nil
}

func (u *lifecycleUsecase) Finalize(ctx context.Context, documentID, actor string) (*entity.Document, error) {
	var result *entity.Document
	var transitioned bool

	err := u.docs.Mutate(ctx, documentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()

		// Idempotent: finalizing an already-completed document is a no-op
		if doc.Status == entity.StatusCompleted {
			result = doc
			return nil
		}
		if !u.sm.CanTransition(doc.Status, entity.StatusCompleted) {
			return entity.NewInvalidTransition(doc.Status, "finalize")
		}

		now := time.Now()
		doc.Status = entity.StatusCompleted
		doc.CompletedAt = &now
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}
		result = doc
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		u.recordAudit(ctx, documentID, actor, entity.ActionFinalize, "")
		u.invalidate(ctx, documentID)
		u.logger.Info("Document finalized", zap.String("document_id", documentID))
	}
	return result, nil
}

// Get reads through the cache; the record store stays the source of truth.
func (u *lifecycleUsecase) Get(ctx context.Context, documentID string) (*entity.Document, error) {
	if doc, err := u.cache.Get(ctx, documentID); err == nil && doc != nil {
		return doc, nil
	} else if err != nil {
		u.logger.Warn("Document cache read failed", zap.Error(err))
	}

	doc, err := u.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, entity.NewNotFound(documentID)
	}

	if err := u.cache.Set(ctx, doc); err != nil {
		u.logger.Warn("Document cache write failed", zap.Error(err))
	}
	return doc, nil
}

func (u *lifecycleUsecase) GetSigners(ctx context.Context, documentID string) ([]entity.Signer, error) {
	return u.docs.GetSigners(ctx, documentID)
}

func (u *lifecycleUsecase) ListByOwner(ctx context.Context, owner string, page, perPage int) ([]entity.Document, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	return u.docs.ListByOwner(ctx, owner, perPage, (page-1)*perPage)
}

func (u *lifecycleUsecase) recordAudit(ctx context.Context, documentID, actor, action, details string) {
	recordAudit(ctx, u.audit, u.logger, documentID, actor, action, details)
}

func (u *lifecycleUsecase) invalidate(ctx context.Context, documentID string) {
	invalidateCache(ctx, u.cache, u.logger, documentID)
}

func findSigner(signers []entity.Signer, identity string) *entity.Signer {
	for i := range signers {
		if signers[i].Identity == identity {
			return &signers[i]
		}
	}
	return nil
}
