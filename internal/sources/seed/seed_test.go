package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	badgerstore "github.com/MrSnakeDoc/vault/internal/store/badger"
)

func openStore(t *testing.T) *badgerstore.Store {
	t.Helper()
	s, err := badgerstore.Open(context.Background(), badgerstore.Options{InMemory: true}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	n, err := Import(ctx, s, writeSeed(t, sampleYAML), logger.NewNop())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Import() = %d, want 3", n)
	}

	out := filepath.Join(t.TempDir(), "export.yaml")
	if n, err := Export(ctx, s, out, logger.NewNop()); err != nil || n != 3 {
		t.Fatalf("Export() = %d, %v", n, err)
	}

	back, err := NewLoader(out).Load()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, e := range back.Items {
		names[e.Name] = true
	}
	for _, want := range []string{"War and Peace", "Interstellar", "Notes"} {
		if !names[want] {
			t.Errorf("export is missing %q", want)
		}
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	path := writeSeed(t, "items:\n  - name: ok\n    category: book\n  - name: broken\n    category: vinyl\n")
	if _, err := Import(ctx, s, path, logger.NewNop()); err == nil {
		t.Fatal("Import() should fail")
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() = %d after failed import, want 0", n)
	}
}

func TestImportIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	path := writeSeed(t, sampleYAML)

	if _, err := s.Add(ctx, domain.Draft{Name: "existing", Category: domain.CategoryOther}); err != nil {
		t.Fatal(err)
	}

	n, err := ImportIfEmpty(ctx, s, path, logger.NewNop())
	if err != nil || n != 0 {
		t.Errorf("ImportIfEmpty() on non-empty store = %d, %v, want 0, nil", n, err)
	}
	if c, _ := s.Count(ctx); c != 1 {
		t.Errorf("Count() = %d, want 1", c)
	}
}
