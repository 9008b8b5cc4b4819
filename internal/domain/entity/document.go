package entity

import "time"

type DocumentStatus string

const (
	StatusUploaded  DocumentStatus = "uploaded"
	StatusPreviewed DocumentStatus = "previewed"
	StatusAccepted  DocumentStatus = "accepted"
	StatusSigned    DocumentStatus = "signed"
	StatusCompleted DocumentStatus = "completed"
	StatusRejected  DocumentStatus = "rejected"
	// StatusPending is the initial status of a multi-signer document.
	StatusPending DocumentStatus = "pending"
)

// IsTerminal reports whether no further transitions are possible from s.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// OrderingPolicy controls whether a multi-signer document enforces the
// recorded signer order or lets all signers act in parallel.
type OrderingPolicy string

const (
	OrderingParallel   OrderingPolicy = "parallel"
	OrderingSequential OrderingPolicy = "sequential"
)

// Metadata carries the free-form display strings attached at creation.
type Metadata struct {
	Title       string `json:"title"`
	Purpose     string `json:"purpose"`
	SignerLabel string `json:"signer_label"`
}

type Document struct {
	ID                  string         `json:"id"`
	OwnerIdentity       string         `json:"owner_identity"`
	OriginalDigest      string         `json:"original_digest"`
	SignedDigest        string         `json:"signed_digest,omitempty"`
	Status              DocumentStatus `json:"status"`
	RequiredSignerCount int            `json:"required_signer_count"`
	Ordering            OrderingPolicy `json:"ordering"`
	Metadata            Metadata       `json:"metadata"`
	CreatedAt           time.Time      `json:"created_at"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
}

// IsMultiSigner reports whether the document was created through the
// multi-signer coordinator.
func (d *Document) IsMultiSigner() bool {
	return d.RequiredSignerCount > 1
}

type SignerStatus string

const (
	SignerPending  SignerStatus = "pending"
	SignerSigned   SignerStatus = "signed"
	SignerRejected SignerStatus = "rejected"
)

// Signer is one required party on a document. The signer set is fixed at
// creation time; there are no late-added signers.
type Signer struct {
	DocumentID string       `json:"document_id"`
	Identity   string       `json:"identity"`
	Order      int          `json:"order"`
	Status     SignerStatus `json:"status"`
}

// Signature is an immutable record of one successful signing act. At most
// one row exists per (document, signer) pair; re-signing is rejected, never
// overwritten.
type Signature struct {
	ID             int64     `json:"id"`
	DocumentID     string    `json:"document_id"`
	SignerIdentity string    `json:"signer_identity"`
	DigestSigned   string    `json:"digest_signed"`
	SignatureValue string    `json:"signature_value"`
	SignedAt       time.Time `json:"signed_at"`
}
