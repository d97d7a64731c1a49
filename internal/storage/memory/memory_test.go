package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gastos/internal/storage"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("unexpected get on empty store: ok=%v err=%v", ok, err)
	}

	value := []byte(`["A"]`)
	if err := s.Set(ctx, storage.KeyCategories, value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'X'

	got, ok, err := s.Get(ctx, storage.KeyCategories)
	if err != nil || !ok || string(got) != `["A"]` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestNewFromDirSeeds(t *testing.T) {
	dir := t.TempDir()
	s := NewFromDir(dir)
	if _, ok, _ := s.Get(context.Background(), storage.KeyCategories); ok {
		t.Fatalf("expected empty store when files are missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_categories.txt", "# header\nA\nB\nA\n\n")
	mustWrite("metas.json", `{"A": 10}`)

	s = NewFromDir(dir)
	cats, err := storage.NewStore(s, nil).LoadCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != "A" || cats[1] != "B" {
		t.Fatalf("unexpected cats: %v", cats)
	}
	if raw, ok, _ := s.Get(context.Background(), storage.KeyGoals); !ok || string(raw) != `{"A": 10}` {
		t.Fatalf("goals file not seeded: %q", raw)
	}

	mustWrite("categorias.json", `["Json"]`)
	s = NewFromDir(dir)
	raw, _, _ := s.Get(context.Background(), storage.KeyCategories)
	if string(raw) != `["Json"]` {
		t.Fatalf("json file should win over the text seed: %q", raw)
	}
}
