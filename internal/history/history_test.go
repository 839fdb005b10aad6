package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nepsereport/pkg/nepsereport"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)

	older := &nepsereport.Report{
		ID:          "a",
		GeneratedAt: base,
		PriceDate:   "2025-12-24",
		Currency:    "NPR",
		Totals: nepsereport.Totals{
			Investment: nepsereport.KnownInt(1000),
			Realized:   nepsereport.Amount{},
		},
	}
	newer := &nepsereport.Report{ID: "b", GeneratedAt: base.Add(time.Hour), PriceDate: "2025-12-25", Currency: "NPR"}

	for _, e := range []Entry{
		EntryFor(older, "html", "/out/a.html", 10, "api"),
		EntryFor(newer, "json", "/out/b.json", 20, "schedule"),
		EntryFor(older, "html", "/out/a.html", 12, "api"),
	} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := store.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ReportID != "b" || entries[1].ReportID != "a" {
		t.Fatalf("expected newest first, got %s, %s", entries[0].ReportID, entries[1].ReportID)
	}
	if entries[1].Bytes != 12 {
		t.Fatalf("expected replaced entry, got %d bytes", entries[1].Bytes)
	}
	if entries[1].Investment != "1000" || entries[0].Investment != "" {
		t.Fatalf("unexpected investments %q %q", entries[1].Investment, entries[0].Investment)
	}
	if !entries[0].GeneratedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected generated_at %v", entries[0].GeneratedAt)
	}

	page, err := store.List(ctx, 1, 1)
	if err != nil || len(page) != 1 || page[0].ReportID != "a" {
		t.Fatalf("unexpected page %v (%v)", page, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := &nepsereport.Report{ID: "a", GeneratedAt: time.Now()}
	if err := store.Record(context.Background(), EntryFor(r, "md", "/out/a.md", 1, "cli")); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = store.Close()

	store, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	entries, err := store.List(context.Background(), 10, 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %v (%v)", entries, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
