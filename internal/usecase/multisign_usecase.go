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
)

type InitiateRequest struct {
	Bytes            []byte
	OwnerIdentity    string
	SignerIdentities []string
	// Ordering defaults to parallel; sequential enforces the recorded
	// signer order.
	Ordering         entity.OrderingPolicy
	Metadata         entity.Metadata
	ConfirmDuplicate bool
}

type MemberSignRequest struct {
	DocumentID     string
	SignerIdentity string
	// Credential is the member's private key PEM, never persisted.
	Credential string
}

// MemberActResult reports the document state after a member acted.
type MemberActResult struct {
	Status        entity.DocumentStatus `json:"status"`
	SignedCount   int                   `json:"signed_count"`
	RequiredCount int                   `json:"required_count"`
}

type MultiSignUsecase interface {
	Initiate(ctx context.Context, req InitiateRequest) (*entity.Document, error)
	SignAsMember(ctx context.Context, req MemberSignRequest) (*MemberActResult, error)
	// RejectAsMember voids the whole request: one rejection moves the
	// document to rejected.
	RejectAsMember(ctx context.Context, documentID, signerIdentity string) (*MemberActResult, error)
}

type multiSignUsecase struct {
	config   *config.Config
	docs     repository.DocumentRepository
	audit    repository.AuditRepository
	cache    repository.DocumentCache
	crypto   crypto.Service
	detector *DuplicateDetector
	logger   *zap.Logger
}

func NewMultiSignUsecase(
	cfg *config.Config,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	cache repository.DocumentCache,
	cryptoSvc crypto.Service,
	detector *DuplicateDetector,
	logger *zap.Logger,
) MultiSignUsecase {
	return &multiSignUsecase{
		config:   cfg,
		docs:     docs,
		audit:    audit,
		cache:    cache,
		crypto:   cryptoSvc,
		detector: detector,
		logger:   logger,
	}
}

func (u *multiSignUsecase) Initiate(ctx context.Context, req InitiateRequest) (*entity.Document, error) {
	u.logger.Info("Initiating multi-signer document",
		zap.String("owner", req.OwnerIdentity),
		zap.Int("signer_count", len(req.SignerIdentities)),
	)

	if len(req.Bytes) == 0 {
		return nil, entity.NewInvalidFile("file bytes are required")
	}
	if req.OwnerIdentity == "" {
		return nil, entity.NewInvalidFile("owner identity is required")
	}

	identities := dedupeIdentities(req.SignerIdentities)
	if len(identities) == 0 {
		return nil, entity.NewNoSigners()
	}

	ordering := req.Ordering
	if ordering == "" {
		ordering = entity.OrderingParallel
	}
	if ordering != entity.OrderingParallel && ordering != entity.OrderingSequential {
		return nil, fmt.Errorf("ordering must be %q or %q", entity.OrderingParallel, entity.OrderingSequential)
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
		Status:              entity.StatusPending,
		RequiredSignerCount: len(identities),
		Ordering:            ordering,
		Metadata:            req.Metadata,
		CreatedAt:           time.Now(),
	}

	signers := make([]entity.Signer, len(identities))
	for i, identity := range identities {
		signers[i] = entity.Signer{
			DocumentID: doc.ID,
			Identity:   identity,
			Order:      i + 1,
			Status:     entity.SignerPending,
		}
	}

	if err := u.docs.Create(ctx, doc, signers); err != nil {
		return nil, fmt.Errorf("failed to create multi-signer document: %w", err)
	}

	recordAudit(ctx, u.audit, u.logger, doc.ID, req.OwnerIdentity, entity.ActionInitiate,
		fmt.Sprintf("%d signers, %s ordering", len(identities), ordering))

	u.logger.Info("Multi-signer document created",
		zap.String("document_id", doc.ID),
		zap.Int("required_signers", len(identities)),
		zap.String("ordering", string(ordering)),
	)
	return doc, nil
}

func (u *multiSignUsecase) SignAsMember(ctx context.Context, req MemberSignRequest) (*MemberActResult, error) {
	u.logger.Info("Member signing",
		zap.String("document_id", req.DocumentID),
		zap.String("identity", req.SignerIdentity),
	)

	var result *MemberActResult
	var completed bool

	err := u.docs.Mutate(ctx, req.DocumentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()
		if doc.Status != entity.StatusPending {
			return entity.NewInvalidTransition(doc.Status, "sign as member")
		}

		signers, err := tx.Signers(ctx)
		if err != nil {
			return err
		}
		signer := findSigner(signers, req.SignerIdentity)
		if signer == nil {
			return entity.NewUnauthorized(req.SignerIdentity, doc.Status)
		}
		if signer.Status != entity.SignerPending {
			return entity.NewAlreadyActed(req.SignerIdentity, signer.Status, doc.Status)
		}

		if doc.Ordering == entity.OrderingSequential {
			for _, other := range signers {
				if other.Order < signer.Order && other.Status == entity.SignerPending {
					return entity.NewOutOfOrder(other.Identity, doc.Status)
				}
			}
		}

		// No state is written before the primitive succeeds.
		signCtx, cancel := context.WithTimeout(ctx, u.config.Signing.Timeout)
		defer cancel()
		signatureValue, err := u.crypto.Sign(signCtx, doc.OriginalDigest, req.Credential)
		if err != nil {
			return entity.NewSigningFailed(err)
		}

		if err := tx.InsertSignature(ctx, &entity.Signature{
			DocumentID:     doc.ID,
			SignerIdentity: req.SignerIdentity,
			DigestSigned:   doc.OriginalDigest,
			SignatureValue: signatureValue,
			SignedAt:       time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.UpdateSignerStatus(ctx, req.SignerIdentity, entity.SignerSigned); err != nil {
			return err
		}

		signedCount := 1 // this signer
		for _, other := range signers {
			if other.Identity != req.SignerIdentity && other.Status == entity.SignerSigned {
				signedCount++
			}
		}

		// Threshold completion happens inside the same transaction as the
		// count, so two concurrent last signers cannot both complete.
		if signedCount == doc.RequiredSignerCount {
			now := time.Now()
			doc.Status = entity.StatusCompleted
			doc.CompletedAt = &now
			// The multi-signer flow has no embedding step; the finalized
			// artifact is the original content.
			doc.SignedDigest = doc.OriginalDigest
			if err := tx.UpdateDocument(ctx, doc); err != nil {
				return err
			}
			completed = true
		}

		result = &MemberActResult{
			Status:        doc.Status,
			SignedCount:   signedCount,
			RequiredCount: doc.RequiredSignerCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, u.audit, u.logger, req.DocumentID, req.SignerIdentity, entity.ActionMemberSign,
		fmt.Sprintf("%d/%d signed", result.SignedCount, result.RequiredCount))
	invalidateCache(ctx, u.cache, u.logger, req.DocumentID)

	if completed {
		u.logger.Info("Multi-signer document completed",
			zap.String("document_id", req.DocumentID),
			zap.Int("signed_count", result.SignedCount),
		)
	}
	return result, nil
}

func (u *multiSignUsecase) RejectAsMember(ctx context.Context, documentID, signerIdentity string) (*MemberActResult, error) {
	u.logger.Info("Member rejecting",
		zap.String("document_id", documentID),
		zap.String("identity", signerIdentity),
	)

	var result *MemberActResult
	err := u.docs.Mutate(ctx, documentID, func(ctx context.Context, tx repository.MutationTx) error {
		doc := tx.Document()
		if doc.Status != entity.StatusPending {
			return entity.NewInvalidTransition(doc.Status, "reject as member")
		}

		signers, err := tx.Signers(ctx)
		if err != nil {
			return err
		}
		signer := findSigner(signers, signerIdentity)
		if signer == nil {
			return entity.NewUnauthorized(signerIdentity, doc.Status)
		}
		if signer.Status != entity.SignerPending {
			return entity.NewAlreadyActed(signerIdentity, signer.Status, doc.Status)
		}

		if err := tx.UpdateSignerStatus(ctx, signerIdentity, entity.SignerRejected); err != nil {
			return err
		}

		// One rejection voids the whole request
		doc.Status = entity.StatusRejected
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		signedCount := 0
		for _, other := range signers {
			if other.Status == entity.SignerSigned {
				signedCount++
			}
		}
		result = &MemberActResult{
			Status:        doc.Status,
			SignedCount:   signedCount,
			RequiredCount: doc.RequiredSignerCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, u.audit, u.logger, documentID, signerIdentity, entity.ActionMemberReject, "request voided")
	invalidateCache(ctx, u.cache, u.logger, documentID)

	u.logger.Info("Multi-signer document rejected",
		zap.String("document_id", documentID),
		zap.String("rejected_by", signerIdentity),
	)
	return result, nil
}

// dedupeIdentities drops repeats while preserving first-occurrence order.
func dedupeIdentities(identities []string) []string {
	seen := make(map[string]bool, len(identities))
	var out []string
	for _, id := range identities {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
