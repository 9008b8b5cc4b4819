package lifecycle

import "signtusk/internal/domain/entity"

// StateMachine enforces single-signer document status transitions.
//
// accepted has no edge to rejected: once a document is accepted the only
// forward path is signing, so a signer cannot repudiate after cryptographic
// commitment begins.
type StateMachine struct {
	allowedTransitions map[entity.DocumentStatus][]entity.DocumentStatus
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[entity.DocumentStatus][]entity.DocumentStatus{
			entity.StatusUploaded:  {entity.StatusPreviewed, entity.StatusRejected},
			entity.StatusPreviewed: {entity.StatusAccepted, entity.StatusRejected},
			entity.StatusAccepted:  {entity.StatusSigned},
			entity.StatusSigned:    {entity.StatusCompleted},
			entity.StatusCompleted: {},
			entity.StatusRejected:  {},
		},
	}
}

// CanTransition checks if a status transition is allowed.
func (sm *StateMachine) CanTransition(from, to entity.DocumentStatus) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the allowed next statuses for a given status.
func (sm *StateMachine) AllowedTransitions(from entity.DocumentStatus) []entity.DocumentStatus {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return nil
	}
	return allowed
}
