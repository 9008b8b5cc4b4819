package repository

import "context"

// KeyRepository maps a stable signer identity to its registered public key
// (PEM). Raw private material is never stored.
type KeyRepository interface {
	SavePublicKey(ctx context.Context, identity, publicKeyPEM string) error
	// GetPublicKey returns "" without error when the identity has no
	// registered key.
	GetPublicKey(ctx context.Context, identity string) (string, error)
}
