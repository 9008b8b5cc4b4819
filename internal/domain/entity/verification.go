package entity

import "time"

// VerifyReason explains a valid:false verification result. A false result
// is the expected, user-facing outcome of tampering or incompleteness, not
// an error.
type VerifyReason string

const (
	ReasonNone       VerifyReason = ""
	ReasonNotFound   VerifyReason = "NotFound"
	ReasonIncomplete VerifyReason = "IncompleteSignatures"
	ReasonMismatch   VerifyReason = "SignatureMismatch"
)

// SignatureCheck is the per-signature outcome of a verification run.
type SignatureCheck struct {
	SignerIdentity string    `json:"signer_identity"`
	Valid          bool      `json:"valid"`
	SignedAt       time.Time `json:"signed_at"`
}

// VerificationResult aggregates per-signature validity with the
// completeness rule: a document missing required signatures is invalid even
// if every signature present checks out.
type VerificationResult struct {
	Valid         bool             `json:"valid"`
	Reason        VerifyReason     `json:"reason,omitempty"`
	DocumentID    string           `json:"document_id,omitempty"`
	Status        DocumentStatus   `json:"status,omitempty"`
	SignedCount   int              `json:"signed_count"`
	RequiredCount int              `json:"required_count"`
	Metadata      *Metadata        `json:"metadata,omitempty"`
	Signatures    []SignatureCheck `json:"signatures,omitempty"`
}
