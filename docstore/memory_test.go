package docstore_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/distextil/telas_backend/docstore"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	if err := store.Put(ctx, "inventory/2026/08/a.json", []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get(ctx, "inventory/2026/08/a.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `[]` {
		t.Fatalf("Get = %q, want %q", data, `[]`)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, docstore.ErrObjectNotFound) {
		t.Fatalf("Get missing = %v, want ErrObjectNotFound", err)
	}

	if err := store.Delete(ctx, "inventory/2026/08/a.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "inventory/2026/08/a.json"); !errors.Is(err, docstore.ErrObjectNotFound) {
		t.Fatalf("second Delete = %v, want ErrObjectNotFound", err)
	}
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	for _, key := range []string{
		"inventory/2026/08/a.json",
		"inventory/2026/08/b.json",
		"inventory/2026/07/old.json",
		"packing-lists/pl-1.json",
	} {
		if err := store.Put(ctx, key, []byte(`[]`)); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "inventory/2026/08/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List returned %d objects, want 2", len(infos))
	}
	if infos[0].Key != "inventory/2026/08/a.json" || infos[1].Key != "inventory/2026/08/b.json" {
		t.Fatalf("List keys = %v", infos)
	}

	empty, err := store.List(ctx, "nothing/")
	if err != nil {
		t.Fatalf("List empty prefix: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no objects, got %d", len(empty))
	}
}
