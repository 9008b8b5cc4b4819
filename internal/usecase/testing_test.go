package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signtusk/internal/config"
	"signtusk/internal/domain/entity"
	"signtusk/internal/domain/repository"
	"signtusk/internal/infrastructure/crypto"
	"signtusk/internal/lifecycle"
)

// memStore is an in-memory document store honoring the Mutate contract: the
// callback runs read-validate-write under a lock, and staged writes apply
// only when the callback returns nil.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]*entity.Document
	signers map[string][]entity.Signer
	sigs    map[string][]entity.Signature
}

func newMemStore() *memStore {
	return &memStore{
		docs:    make(map[string]*entity.Document),
		signers: make(map[string][]entity.Signer),
		sigs:    make(map[string][]entity.Signature),
	}
}

func (s *memStore) Create(_ context.Context, doc *entity.Document, signers []entity.Signer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.docs[doc.ID] = &cp
	s.signers[doc.ID] = append([]entity.Signer(nil), signers...)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (s *memStore) GetSigners(_ context.Context, documentID string) ([]entity.Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Signer(nil), s.signers[documentID]...), nil
}

func (s *memStore) FindByDigest(_ context.Context, digest string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.OriginalDigest == digest || doc.SignedDigest == digest {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindByOwnerAndDigest(_ context.Context, owner, digest string) (*entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *entity.Document
	for _, doc := range s.docs {
		if doc.OwnerIdentity != owner {
			continue
		}
		if doc.OriginalDigest != digest && doc.SignedDigest != digest {
			continue
		}
		if newest == nil || doc.CreatedAt.After(newest.CreatedAt) {
			newest = doc
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (s *memStore) ListByOwner(_ context.Context, owner string, limit, offset int) ([]entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Document
	for _, doc := range s.docs {
		if doc.OwnerIdentity == owner {
			out = append(out, *doc)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListByStatus(_ context.Context, status entity.DocumentStatus, limit int) ([]entity.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Document
	for _, doc := range s.docs {
		if doc.Status == status {
			out = append(out, *doc)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) Mutate(ctx context.Context, id string, fn func(ctx context.Context, tx repository.MutationTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return entity.NewNotFound(id)
	}

	cp := *doc
	tx := &memTx{store: s, id: id, doc: &cp}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memStore) ListByDocument(_ context.Context, documentID string) ([]entity.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Signature(nil), s.sigs[documentID]...), nil
}

// memTx stages writes while the store lock is held and applies them on a
// nil callback return, matching transactional rollback semantics.
type memTx struct {
	store *memStore
	id    string
	doc   *entity.Document

	docUpdate     *entity.Document
	signerUpdates map[string]entity.SignerStatus
	newSigs       []entity.Signature
}

func (t *memTx) Document() *entity.Document { return t.doc }

func (t *memTx) Signers(_ context.Context) ([]entity.Signer, error) {
	return append([]entity.Signer(nil), t.store.signers[t.id]...), nil
}

func (t *memTx) UpdateDocument(_ context.Context, doc *entity.Document) error {
	cp := *doc
	t.docUpdate = &cp
	return nil
}

func (t *memTx) UpdateSignerStatus(_ context.Context, identity string, status entity.SignerStatus) error {
	if t.signerUpdates == nil {
		t.signerUpdates = make(map[string]entity.SignerStatus)
	}
	t.signerUpdates[identity] = status
	return nil
}

func (t *memTx) InsertSignature(_ context.Context, sig *entity.Signature) error {
	for _, existing := range t.store.sigs[t.id] {
		if existing.SignerIdentity == sig.SignerIdentity {
			return entity.NewAlreadyActed(sig.SignerIdentity, entity.SignerSigned, t.doc.Status)
		}
	}
	cp := *sig
	cp.ID = int64(len(t.store.sigs[t.id]) + 1)
	t.newSigs = append(t.newSigs, cp)
	return nil
}

func (t *memTx) commit() {
	if t.docUpdate != nil {
		t.store.docs[t.id] = t.docUpdate
	}
	for identity, status := range t.signerUpdates {
		signers := t.store.signers[t.id]
		for i := range signers {
			if signers[i].Identity == identity {
				signers[i].Status = status
			}
		}
	}
	t.store.sigs[t.id] = append(t.store.sigs[t.id], t.newSigs...)
}

type memAudit struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
}

func (a *memAudit) Append(_ context.Context, entry *entity.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := *entry
	cp.ID = int64(len(a.entries) + 1)
	a.entries = append(a.entries, cp)
	return nil
}

func (a *memAudit) ListByDocument(_ context.Context, documentID string, limit, offset int) ([]entity.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []entity.AuditEntry
	for _, e := range a.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *memAudit) actions(documentID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		if e.DocumentID == documentID {
			out = append(out, e.Action)
		}
	}
	return out
}

type memCache struct {
	mu   sync.Mutex
	docs map[string]*entity.Document
}

func newMemCache() *memCache {
	return &memCache{docs: make(map[string]*entity.Document)}
}

func (c *memCache) Get(_ context.Context, id string) (*entity.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (c *memCache) Set(_ context.Context, doc *entity.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *doc
	c.docs[doc.ID] = &cp
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
	return nil
}

type memKeys struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemKeys() *memKeys {
	return &memKeys{keys: make(map[string]string)}
}

func (k *memKeys) SavePublicKey(_ context.Context, identity, publicKeyPEM string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[identity] = publicKeyPEM
	return nil
}

func (k *memKeys) GetPublicKey(_ context.Context, identity string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[identity], nil
}

// testEnv wires the usecases against in-memory collaborators and the real
// signing primitive.
type testEnv struct {
	store     *memStore
	audit     *memAudit
	cache     *memCache
	keys      *memKeys
	crypto    crypto.Service
	lifecycle LifecycleUsecase
	multisign MultiSignUsecase
	verify    VerifyUsecase
	auditUC   AuditUsecase
	keyUC     KeyUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Signing: config.SigningConfig{
			Timeout:     5 * time.Second,
			ReadRetries: 1,
		},
	}
	logger := zap.NewNop()

	store := newMemStore()
	audit := &memAudit{}
	cache := newMemCache()
	keys := newMemKeys()
	cryptoSvc := crypto.NewService(keys, logger)
	detector := NewDuplicateDetector(store, logger)
	sm := lifecycle.NewStateMachine()

	return &testEnv{
		store:     store,
		audit:     audit,
		cache:     cache,
		keys:      keys,
		crypto:    cryptoSvc,
		lifecycle: NewLifecycleUsecase(cfg, store, audit, cache, cryptoSvc, detector, sm, logger),
		multisign: NewMultiSignUsecase(cfg, store, audit, cache, cryptoSvc, detector, logger),
		verify:    NewVerifyUsecase(cfg, store, store, audit, cryptoSvc, logger),
		auditUC:   NewAuditUsecase(audit, logger),
		keyUC:     NewKeyUsecase(keys, audit, logger),
	}
}

// enrollSigner registers a fresh key pair for identity and returns the
// private key PEM the signer would hold.
func (e *testEnv) enrollSigner(t *testing.T, identity string) string {
	t.Helper()
	privPEM, pubPEM, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, e.keys.SavePublicKey(context.Background(), identity, pubPEM))
	return privPEM
}
