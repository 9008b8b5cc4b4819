package usecase

import (
	"context"

	"go.uber.org/zap"

	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/crypto"
)

// KeyUsecase enrolls signer identities into the public-key registry the
// verification primitive resolves against.
type KeyUsecase interface {
	RegisterPublicKey(ctx context.Context, identity, publicKeyPEM string) error
}

type keyUsecase struct {
	keys   repository.KeyRepository
	audit  repository.AuditRepository
	logger *zap.Logger
}

func NewKeyUsecase(keys repository.KeyRepository, audit repository.AuditRepository, logger *zap.Logger) KeyUsecase {
	return &keyUsecase{
		keys:   keys,
		audit:  audit,
		logger: logger,
	}
}

func (u *keyUsecase) RegisterPublicKey(ctx context.Context, identity, publicKeyPEM string) error {
	if identity == "" {
		return entity.NewInvalidFile("signer identity is required")
	}
	if _, err := crypto.ParseECPublicKeyPEM(publicKeyPEM); err != nil {
		return entity.NewInvalidFile("public key is not valid PEM: " + err.Error())
	}

	if err := u.keys.SavePublicKey(ctx, identity, publicKeyPEM); err != nil {
		return err
	}

	recordAudit(ctx, u.audit, u.logger, "", identity, entity.ActionRegisterKey, "")
	u.logger.Info("Public key registered", zap.String("identity", identity))
	return nil
}
