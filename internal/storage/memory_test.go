package storage

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryStoreEmpty(t *testing.T) {
	store := NewMemoryStore()

	data, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected empty store, got ok=%v data=%q", ok, data)
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, []byte(`{"version":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok || !bytes.Equal(data, []byte(`{"version":2}`)) {
		t.Fatalf("load returned ok=%v data=%q", ok, data)
	}

	// Last write wins.
	if err := store.Save(ctx, []byte(`{"version":3}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _, _ = store.Load(ctx)
	if !bytes.Equal(data, []byte(`{"version":3}`)) {
		t.Fatalf("expected newest snapshot, got %q", data)
	}
}

func TestMemoryStoreLoadIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, []byte("abc")); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _, _ := store.Load(ctx)
	data[0] = 'x'

	again, _, _ := store.Load(ctx)
	if !bytes.Equal(again, []byte("abc")) {
		t.Fatal("Load must return a copy of the stored snapshot")
	}
}
