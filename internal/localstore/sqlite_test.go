package localstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "typier.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if _, ok, err := store.GetItem(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := store.SetItem(ctx, "a", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("set item: %v", err)
	}
	value, ok, err := store.GetItem(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get item: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"x":1}` {
		t.Fatalf("round trip mismatch: %s", value)
	}

	// Overwrite replaces the prior value.
	if err := store.SetItem(ctx, "a", []byte(`{"x":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, err = store.GetItem(ctx, "a")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(value) != `{"x":2}` {
		t.Fatalf("expected overwritten value, got %s", value)
	}

	if err := store.SetItem(ctx, "b", []byte(`true`)); err != nil {
		t.Fatalf("set second item: %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := store.RemoveItem(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.GetItem(ctx, "a"); ok {
		t.Fatalf("expected key removed")
	}
	// Removing an absent key is not an error.
	if err := store.RemoveItem(ctx, "a"); err != nil {
		t.Fatalf("remove absent key: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	in := payload{Name: "lisu", Count: 3}
	if err := SetJSON(ctx, store, "p", in); err != nil {
		t.Fatalf("set json: %v", err)
	}
	out, ok, err := GetJSON[payload](ctx, store, "p")
	if err != nil || !ok {
		t.Fatalf("get json: ok=%v err=%v", ok, err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}

	if _, ok, err := GetJSON[payload](ctx, store, "absent"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}
