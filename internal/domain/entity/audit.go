package entity

import "time"

// Audit actions recorded against documents.
const (
	ActionUpload       = "upload"
	ActionPreview      = "preview"
	ActionAccept       = "accept"
	ActionReject       = "reject"
	ActionSign         = "sign"
	ActionFinalize     = "finalize"
	ActionInitiate     = "initiate_multisign"
	ActionMemberSign   = "member_sign"
	ActionMemberReject = "member_reject"
	ActionVerify       = "verify"
	ActionRegisterKey  = "register_key"
)

// AuditEntry is an append-only record of a transition or verification
// attempt. Entries are never mutated or deleted.
type AuditEntry struct {
	ID            int64     `json:"id"`
	DocumentID    string    `json:"document_id"`
	ActorIdentity string    `json:"actor_identity"`
	Action        string    `json:"action"`
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
