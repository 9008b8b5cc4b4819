package crypto

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signtusk/internal/domain/repository"
)

// Service is the hashing/signing primitive. The engine treats it as a black
// box: bytes in, digest out; digest plus credential in, signature out;
// digest plus signature plus identity in, valid/invalid out.
type Service interface {
	// Digest returns the lower-case hex SHA-256 of data.
	Digest(data []byte) string
	// Sign produces a base64 ECDSA signature over the digest using the
	// caller-supplied private credential (PEM). The call is bounded by
	// ctx; on cancellation nothing is returned and nothing was persisted.
	Sign(ctx context.Context, digest string, credentialPEM string) (string, error)
	// Verify checks signatureValue over digest against the public key
	// registered for signerIdentity. An unregistered identity verifies as
	// invalid, not as an error.
	Verify(ctx context.Context, digest, signatureValue, signerIdentity string) (bool, error)
}

type ecdsaService struct {
	keys   repository.KeyRepository
	logger *zap.Logger
}

func NewService(keys repository.KeyRepository, logger *zap.Logger) Service {
	return &ecdsaService{
		keys:   keys,
		logger: logger,
	}
}

func (s *ecdsaService) Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *ecdsaService) Sign(ctx context.Context, digest string, credentialPEM string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	digestBytes, err := hex.DecodeString(digest)
	if err != nil {
		return "", fmt.Errorf("malformed digest: %w", err)
	}

	key, err := ParseECPrivateKeyPEM(credentialPEM)
	if err != nil {
		return "", fmt.Errorf("invalid signing credential: %w", err)
	}

	type result struct {
		sig []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		sig, err := ecdsa.SignASN1(rand.Reader, key, digestBytes)
		ch <- result{sig: sig, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("ecdsa sign: %w", r.err)
		}
		return base64.StdEncoding.EncodeToString(r.sig), nil
	}
}

func (s *ecdsaService) Verify(ctx context.Context, digest, signatureValue, signerIdentity string) (bool, error) {
	publicKeyPEM, err := s.keys.GetPublicKey(ctx, signerIdentity)
	if err != nil {
		return false, fmt.Errorf("failed to load public key: %w", err)
	}
	if publicKeyPEM == "" {
		// No registered key means the claim cannot be checked. Fail closed.
		s.logger.Warn("No public key registered for signer",
			zap.String("identity", signerIdentity),
		)
		return false, nil
	}

	key, err := ParseECPublicKeyPEM(publicKeyPEM)
	if err != nil {
		return false, fmt.Errorf("stored public key unreadable: %w", err)
	}

	digestBytes, err := hex.DecodeString(digest)
	if err != nil {
		return false, nil
	}
	sigBytes, err := base64.StdEncoding.DecodeString(signatureValue)
	if err != nil {
		return false, nil
	}

	return ecdsa.VerifyASN1(key, digestBytes, sigBytes), nil
}

var Module = fx.Module("crypto",
	fx.Provide(NewService),
)
