package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/archsynth/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{"password", "token"})(underlyingStore)
	ctx := context.Background()

	snap := sampleSnapshot("pii")
	if err := secureStore.Save(ctx, "pii", snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if snap.Layers[0].Objects[0].Params["password"] != "hunter2" {
		t.Error("Middleware modified the original snapshot!")
	}
	if snap.Layers[0].Slots[1].Value != "t0k3n" {
		t.Error("Middleware modified the original slots!")
	}

	stored, err := underlyingStore.Load(ctx, "pii")
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	l := stored.Layers[0]
	if l.Objects[0].Params["password"] != "***" {
		t.Errorf("Password should be masked, got: %v", l.Objects[0].Params["password"])
	}
	if l.Objects[0].Params["image"] != "postgres" {
		t.Error("Image shouldn't be masked")
	}
	if l.Slots[0].Value != "linux" {
		t.Error("Platform shouldn't be masked")
	}
	if l.Slots[1].Value != "***" || !l.Slots[1].Candidates.IsEmpty() {
		t.Errorf("Token slot should be masked, got: %+v", l.Slots[1])
	}
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlyingStore,
		middleware.NewPIIMiddleware([]string{"password"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	if err := store.Save(ctx, "run", sampleSnapshot("run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load(ctx, "run")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Layers[0].Objects[0].Params["password"]; got != "***" {
		t.Errorf("Expected masking before encryption, got %v", got)
	}
}
