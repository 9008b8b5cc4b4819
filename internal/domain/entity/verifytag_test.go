package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTag(t *testing.T) {
	single := &Document{ID: "doc-1", RequiredSignerCount: 1}
	multi := &Document{ID: "doc-2", RequiredSignerCount: 3}

	assert.Equal(t, "DS:doc-1", VerifyTag(single))
	assert.Equal(t, "MS:doc-2", VerifyTag(multi))
}

func TestParseVerifyTag(t *testing.T) {
	prefix, id, err := ParseVerifyTag("DS:doc-1")
	require.NoError(t, err)
	assert.Equal(t, TagSingle, prefix)
	assert.Equal(t, "doc-1", id)

	prefix, id, err = ParseVerifyTag("MS:a:b")
	require.NoError(t, err)
	assert.Equal(t, TagMulti, prefix)
	assert.Equal(t, "a:b", id)
}

func TestParseVerifyTag_Malformed(t *testing.T) {
	for _, tag := range []string{"", "DS", "DS:", "XX:doc-1", "doc-1"} {
		_, _, err := ParseVerifyTag(tag)
		assert.Error(t, err, "tag %q should not parse", tag)
	}
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusUploaded.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusSigned.IsTerminal())
}
