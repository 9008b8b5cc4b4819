package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"signtusk/internal/domain/entity"
)

func TestStateMachine_CanTransition(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		name    string
		from    entity.DocumentStatus
		to      entity.DocumentStatus
		allowed bool
	}{
		{"uploaded to previewed", entity.StatusUploaded, entity.StatusPreviewed, true},
		{"uploaded to rejected", entity.StatusUploaded, entity.StatusRejected, true},
		{"uploaded to accepted skips preview", entity.StatusUploaded, entity.StatusAccepted, false},
		{"uploaded to signed skips everything", entity.StatusUploaded, entity.StatusSigned, false},
		{"previewed to accepted", entity.StatusPreviewed, entity.StatusAccepted, true},
		{"previewed to rejected", entity.StatusPreviewed, entity.StatusRejected, true},
		{"previewed to signed skips accept", entity.StatusPreviewed, entity.StatusSigned, false},
		{"accepted to signed", entity.StatusAccepted, entity.StatusSigned, true},
		{"accepted to rejected is forbidden", entity.StatusAccepted, entity.StatusRejected, false},
		{"signed to completed", entity.StatusSigned, entity.StatusCompleted, true},
		{"signed to rejected", entity.StatusSigned, entity.StatusRejected, false},
		{"completed is terminal", entity.StatusCompleted, entity.StatusUploaded, false},
		{"rejected is terminal", entity.StatusRejected, entity.StatusPreviewed, false},
		{"no backward edge", entity.StatusSigned, entity.StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachine_TerminalStatusesHaveNoTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.Empty(t, sm.AllowedTransitions(entity.StatusCompleted))
	assert.Empty(t, sm.AllowedTransitions(entity.StatusRejected))
}

func TestStateMachine_UnknownStatus(t *testing.T) {
	sm := NewStateMachine()

	assert.False(t, sm.CanTransition("bogus", entity.StatusSigned))
	assert.Nil(t, sm.AllowedTransitions("bogus"))
}
