package middleware_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleSnapshot(id string) *domain.Snapshot {
	return &domain.Snapshot{
		ID:     id,
		Report: domain.Report{Outcome: domain.OutcomeSuccess, Backend: "tree"},
		Layers: []domain.LayerSnapshot{{
			Name: "functional",
			Objects: []graph.Object{{
				ID: 1, Kind: graph.KindNode, Type: "component", Name: "db",
				Params: map[string]any{"password": "hunter2", "image": "postgres"},
			}},
			Slots: []domain.SlotSnapshot{
				{Object: 1, Param: "platform", Value: "linux", HasValue: true, Candidates: domain.NewSet("linux")},
				{Object: 1, Param: "api_token", Value: "t0k3n", HasValue: true, Candidates: domain.NewSet("t0k3n", "other")},
			},
		}},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlyingStore)
	ctx := context.Background()

	if err := secureStore.Save(ctx, "run", sampleSnapshot("run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx, "run")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(stored.Layers) != 0 {
		t.Fatalf("Expected layers to be hidden, found %d", len(stored.Layers))
	}
	if len(stored.Sealed) == 0 {
		t.Fatal("Expected sealed data in the envelope")
	}
	if stored.Report.Outcome != domain.OutcomeSuccess {
		t.Errorf("Expected the outcome to stay visible, got %q", stored.Report.Outcome)
	}

	loaded, err := secureStore.Load(ctx, "run")
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	l, ok := loaded.Layer("functional")
	if !ok || l.Objects[0].Params["password"] != "hunter2" {
		t.Errorf("Expected the decrypted layer, got %+v", loaded.Layers)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	ctx := context.Background()

	if err := secureStoreOld.Save(ctx, "run", sampleSnapshot("run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "run")
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}

	// Saving again seals with the new key.
	loaded.Problem = "rotated"
	if err := secureStoreNew.Save(ctx, "run", loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := secureStoreOld.Load(ctx, "run"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainSnapshots(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	_ = underlyingStore.Save(ctx, "plain", sampleSnapshot("plain"))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Load(ctx, "plain"); err == nil {
		t.Error("Expected plain snapshot to be rejected")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestEncryptionMiddleware_BoundToID(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	ctx := context.Background()

	if err := secureStore.Save(ctx, "run", sampleSnapshot("run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stored, _ := underlyingStore.Load(ctx, "run")
	_ = underlyingStore.Save(ctx, "copy", stored)

	if _, err := secureStore.Load(ctx, "copy"); err == nil {
		t.Error("Expected a sealed snapshot moved to another id to be rejected")
	}
	if _, err := secureStore.Load(ctx, "run"); err != nil {
		t.Errorf("Load under the original id failed: %v", err)
	}
}

func TestEncryptionMiddleware_InvalidFallbackKey(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic for invalid fallback key size")
		}
		if !strings.Contains(fmt.Sprint(r), "fallback key 0") {
			t.Errorf("Expected the fallback key to be named, got %v", r)
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short-key")},
	})
}
