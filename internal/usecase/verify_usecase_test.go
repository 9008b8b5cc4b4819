package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signtusk/internal/domain/entity"
)

// signSingleDocument walks a document through upload, preview, accept and
// sign, returning the final record and the signed artifact bytes.
func signSingleDocument(t *testing.T, env *testEnv, owner string, content []byte) (*entity.Document, []byte) {
	t.Helper()
	ctx := context.Background()
	privPEM := env.enrollSigner(t, owner)

	doc := uploadTestDocument(t, env, owner, content)
	_, err := env.lifecycle.Preview(ctx, doc.ID, owner)
	require.NoError(t, err)
	_, err = env.lifecycle.Decide(ctx, doc.ID, owner, DecisionAccept)
	require.NoError(t, err)

	artifact := append(append([]byte(nil), content...), []byte(" [signed]")...)
	_, err = env.lifecycle.Sign(ctx, SignRequest{
		DocumentID:      doc.ID,
		SigningIdentity: owner,
		Credential:      privPEM,
		SignedArtifact:  artifact,
	})
	require.NoError(t, err)

	signed, err := env.store.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	return signed, artifact
}

func TestVerify_SignedDocumentByOriginalBytes(t *testing.T) {
	env := newTestEnv(t)
	doc, _ := signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	result, err := env.verify.Verify(context.Background(), []byte("contract body"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, entity.ReasonNone, result.Reason)
	assert.Equal(t, doc.ID, result.DocumentID)
	assert.Equal(t, 1, result.SignedCount)
	assert.Equal(t, 1, result.RequiredCount)
	require.Len(t, result.Signatures, 1)
	assert.True(t, result.Signatures[0].Valid)
	assert.Equal(t, "alice@example.com", result.Signatures[0].SignerIdentity)
}

func TestVerify_SignedDocumentByArtifactBytes(t *testing.T) {
	env := newTestEnv(t)
	doc, artifact := signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	// The signed artifact matches through the signed digest.
	result, err := env.verify.Verify(context.Background(), artifact)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, doc.ID, result.DocumentID)
}

func TestVerify_TamperedBytesNotFound(t *testing.T) {
	env := newTestEnv(t)
	signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	result, err := env.verify.Verify(context.Background(), []byte("contract body (amended)"))
	require.NoError(t, err, "a tampered file is a verification outcome, not an error")
	assert.False(t, result.Valid)
	assert.Equal(t, entity.ReasonNotFound, result.Reason)
	assert.Empty(t, result.DocumentID)
}

func TestVerify_UnsignedDocumentIncomplete(t *testing.T) {
	env := newTestEnv(t)
	uploadTestDocument(t, env, "alice@example.com", []byte("contract body"))

	result, err := env.verify.Verify(context.Background(), []byte("contract body"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, entity.ReasonIncomplete, result.Reason)
	assert.Zero(t, result.SignedCount)
}

func TestVerify_PartialMultiSignIncomplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alicePriv := env.enrollSigner(t, "alice@example.com")
	env.enrollSigner(t, "bob@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), "", "alice@example.com", "bob@example.com")
	_, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "alice@example.com",
		Credential:     alicePriv,
	})
	require.NoError(t, err)

	// One of two signatures present: fails closed even though the
	// signature itself is correct.
	result, err := env.verify.Verify(ctx, []byte("resolution"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, entity.ReasonIncomplete, result.Reason)
	assert.Equal(t, 1, result.SignedCount)
	assert.Equal(t, 2, result.RequiredCount)
	require.Len(t, result.Signatures, 1)
	assert.True(t, result.Signatures[0].Valid)
}

func TestVerify_CompletedMultiSignValid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alicePriv := env.enrollSigner(t, "alice@example.com")
	bobPriv := env.enrollSigner(t, "bob@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), "", "alice@example.com", "bob@example.com")
	for _, m := range []struct{ identity, cred string }{
		{"alice@example.com", alicePriv},
		{"bob@example.com", bobPriv},
	} {
		_, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
			DocumentID:     doc.ID,
			SignerIdentity: m.identity,
			Credential:     m.cred,
		})
		require.NoError(t, err)
	}

	result, err := env.verify.Verify(ctx, []byte("resolution"))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.SignedCount)
	for _, check := range result.Signatures {
		assert.True(t, check.Valid)
	}
}

func TestVerify_UnregisteredSignerKeyInvalidatesSignature(t *testing.T) {
	env := newTestEnv(t)
	doc, _ := signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	// Dropping the registered key makes the stored claim uncheckable.
	env.keys.mu.Lock()
	delete(env.keys.keys, "alice@example.com")
	env.keys.mu.Unlock()

	result, err := env.verify.Verify(context.Background(), []byte("contract body"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, entity.ReasonMismatch, result.Reason)
	assert.Equal(t, doc.ID, result.DocumentID)
}

func TestVerify_ResolveTag(t *testing.T) {
	env := newTestEnv(t)
	doc, _ := signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	result, err := env.verify.ResolveTag(context.Background(), "DS:"+doc.ID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, doc.ID, result.DocumentID)
}

func TestVerify_ResolveTag_Malformed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.verify.ResolveTag(context.Background(), "garbage")
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeInvalidFile, de.Code)
}

func TestVerify_ResolveTag_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.verify.ResolveTag(context.Background(), "DS:missing")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, entity.ReasonNotFound, result.Reason)
}

func TestVerify_RecordsAuditEntry(t *testing.T) {
	env := newTestEnv(t)
	doc, _ := signSingleDocument(t, env, "alice@example.com", []byte("contract body"))

	_, err := env.verify.Verify(context.Background(), []byte("contract body"))
	require.NoError(t, err)

	actions := env.audit.actions(doc.ID)
	assert.Contains(t, actions, entity.ActionVerify)
}
