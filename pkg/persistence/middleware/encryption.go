package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/ports"
)

// EncryptionConfig holds the AES-256 keys of the store.
type EncryptionConfig struct {
	// ActiveKey seals new snapshots. 32 bytes.
	ActiveKey []byte

	// FallbackKeys open snapshots sealed before a key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next ports.SnapshotStore
	keys *keyring
}

// NewEncryptionMiddleware creates a middleware that seals snapshots using
// AES-GCM, bound to their store id. Only the ID, creation time, outcome
// and backend stay readable. It panics on a key that is not 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	keys, err := newKeyring(config)
	if err != nil {
		panic(err)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &encryptionMiddleware{next: next, keys: keys}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	plain, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", id, err)
	}
	sealed, err := m.keys.seal(plain, []byte(id))
	if err != nil {
		return fmt.Errorf("seal snapshot %s: %w", id, err)
	}
	return m.next.Save(ctx, id, &domain.Snapshot{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Report:    domain.Report{Outcome: snap.Report.Outcome, Backend: snap.Report.Backend},
		Sealed:    sealed,
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	// Plain snapshots are refused once a key is configured.
	if len(envelope.Sealed) == 0 {
		return nil, fmt.Errorf("snapshot %s is not sealed", id)
	}
	plain, err := m.keys.open(envelope.Sealed, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", id, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

var errNoKey = errors.New("no key opens the snapshot")

// keyring seals with its first AEAD and opens with any of them. Sealed
// data is the nonce followed by the GCM output.
type keyring struct {
	aeads []cipher.AEAD
}

func newKeyring(config EncryptionConfig) (*keyring, error) {
	k := &keyring{}
	for i, key := range append([][]byte{config.ActiveKey}, config.FallbackKeys...) {
		if len(key) != 32 {
			if i == 0 {
				return nil, fmt.Errorf("active key must be 32 bytes (AES-256), got %d", len(key))
			}
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256), got %d", i-1, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		k.aeads = append(k.aeads, aead)
	}
	return k, nil
}

func (k *keyring) seal(plain, ad []byte) ([]byte, error) {
	aead := k.aeads[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, ad), nil
}

func (k *keyring) open(sealed, ad []byte) ([]byte, error) {
	for _, aead := range k.aeads {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errors.New("sealed data too short")
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], ad); err == nil {
			return plain, nil
		}
	}
	return nil, errNoKey
}
