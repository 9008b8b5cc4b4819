package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signtusk/internal/domain/entity"
)

func initiateTestRequest(t *testing.T, env *testEnv, content []byte, ordering entity.OrderingPolicy, signers ...string) *entity.Document {
	t.Helper()
	doc, err := env.multisign.Initiate(context.Background(), InitiateRequest{
		Bytes:            content,
		OwnerIdentity:    "owner@example.com",
		SignerIdentities: signers,
		Ordering:         ordering,
		Metadata:         entity.Metadata{Title: "Board Resolution"},
	})
	require.NoError(t, err)
	return doc
}

func TestMultiSign_AllMembersSignCompletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alicePriv := env.enrollSigner(t, "alice@example.com")
	bobPriv := env.enrollSigner(t, "bob@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), "", "alice@example.com", "bob@example.com")
	assert.Equal(t, entity.StatusPending, doc.Status)
	assert.Equal(t, 2, doc.RequiredSignerCount)
	assert.Equal(t, entity.OrderingParallel, doc.Ordering)

	res, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "alice@example.com",
		Credential:     alicePriv,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, res.Status)
	assert.Equal(t, 1, res.SignedCount)
	assert.Equal(t, 2, res.RequiredCount)

	res, err = env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "bob@example.com",
		Credential:     bobPriv,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, res.Status)
	assert.Equal(t, 2, res.SignedCount)

	final, err := env.lifecycle.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	// No embedding step in the multi-signer flow.
	assert.Equal(t, final.OriginalDigest, final.SignedDigest)

	sigs, err := env.store.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, sigs, 2)
}

func TestMultiSign_MemberCannotSignTwice(t *testing.T) {
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

	_, err = env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "alice@example.com",
		Credential:     alicePriv,
	})
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeAlreadyActed, de.Code)

	sigs, err := env.store.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, sigs, 1, "re-signing must not overwrite or duplicate")
}

func TestMultiSign_NonMemberIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	malloryPriv := env.enrollSigner(t, "mallory@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), "", "alice@example.com", "bob@example.com")

	_, err := env.multisign.SignAsMember(context.Background(), MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "mallory@example.com",
		Credential:     malloryPriv,
	})
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeUnauthorized, de.Code)
}

func TestMultiSign_SequentialOrderingEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alicePriv := env.enrollSigner(t, "alice@example.com")
	bobPriv := env.enrollSigner(t, "bob@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), entity.OrderingSequential,
		"alice@example.com", "bob@example.com")

	// Bob is second and may not sign before Alice.
	_, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "bob@example.com",
		Credential:     bobPriv,
	})
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeOutOfOrder, de.Code)

	_, err = env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "alice@example.com",
		Credential:     alicePriv,
	})
	require.NoError(t, err)

	res, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "bob@example.com",
		Credential:     bobPriv,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, res.Status)
}

func TestMultiSign_OneRejectionVoidsRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alicePriv := env.enrollSigner(t, "alice@example.com")
	bobPriv := env.enrollSigner(t, "bob@example.com")

	doc := initiateTestRequest(t, env, []byte("resolution"), "",
		"alice@example.com", "bob@example.com", "carol@example.com")

	_, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "alice@example.com",
		Credential:     alicePriv,
	})
	require.NoError(t, err)

	res, err := env.multisign.RejectAsMember(ctx, doc.ID, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, res.Status)

	// Remaining signers can no longer act.
	_, err = env.multisign.SignAsMember(ctx, MemberSignRequest{
		DocumentID:     doc.ID,
		SignerIdentity: "bob@example.com",
		Credential:     bobPriv,
	})
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeInvalidTransition, de.Code)
	assert.Equal(t, entity.StatusRejected, de.Status)
}

func TestMultiSign_InitiateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.multisign.Initiate(ctx, InitiateRequest{
		Bytes:         []byte("resolution"),
		OwnerIdentity: "owner@example.com",
	})
	de, ok := entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeNoSigners, de.Code)

	// Duplicates and blanks collapse to nothing.
	_, err = env.multisign.Initiate(ctx, InitiateRequest{
		Bytes:            []byte("resolution"),
		OwnerIdentity:    "owner@example.com",
		SignerIdentities: []string{"", "", ""},
	})
	de, ok = entity.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, entity.CodeNoSigners, de.Code)

	_, err = env.multisign.Initiate(ctx, InitiateRequest{
		Bytes:            []byte("resolution"),
		OwnerIdentity:    "owner@example.com",
		SignerIdentities: []string{"alice@example.com"},
		Ordering:         "round-robin",
	})
	assert.Error(t, err)
}

func TestMultiSign_DeduplicatesSignerList(t *testing.T) {
	env := newTestEnv(t)

	doc := initiateTestRequest(t, env, []byte("resolution"), "",
		"alice@example.com", "bob@example.com", "alice@example.com", "")
	assert.Equal(t, 2, doc.RequiredSignerCount)

	signers, err := env.store.GetSigners(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, signers, 2)
	assert.Equal(t, "alice@example.com", signers[0].Identity)
	assert.Equal(t, 1, signers[0].Order)
	assert.Equal(t, "bob@example.com", signers[1].Identity)
	assert.Equal(t, 2, signers[1].Order)
}

// All members race to sign; the document must complete exactly once with a
// full signature set, regardless of interleaving.
func TestMultiSign_ConcurrentSignersCompleteOnce(t *testing.T) {
	const memberCount = 4
	const iterations = 100

	env := newTestEnv(t)
	ctx := context.Background()

	identities := make([]string, memberCount)
	credentials := make([]string, memberCount)
	for i := range identities {
		identities[i] = fmt.Sprintf("signer%d@example.com", i)
		credentials[i] = env.enrollSigner(t, identities[i])
	}

	for iter := 0; iter < iterations; iter++ {
		doc := initiateTestRequest(t, env, []byte(fmt.Sprintf("resolution %d", iter)), "", identities...)

		var wg sync.WaitGroup
		completions := make(chan struct{}, memberCount)
		for i := 0; i < memberCount; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := env.multisign.SignAsMember(ctx, MemberSignRequest{
					DocumentID:     doc.ID,
					SignerIdentity: identities[i],
					Credential:     credentials[i],
				})
				if err != nil {
					t.Errorf("iteration %d: signer %s: %v", iter, identities[i], err)
					return
				}
				if res.Status == entity.StatusCompleted {
					completions <- struct{}{}
				}
			}(i)
		}
		wg.Wait()
		close(completions)

		assert.Len(t, completions, 1, "iteration %d: exactly one signer must observe completion", iter)

		final, err := env.store.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, final.Status)
		require.NotNil(t, final.CompletedAt)

		sigs, err := env.store.ListByDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Len(t, sigs, memberCount)
	}
}
