package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonny/kubot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              ":memory:",
		MaxOpenConns:      1,
		PragmaJournalMode: "WAL",
		PragmaBusyTimeout: 5000,
	})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func makeHistoryEntry(userID, channelID string) model.HistoryEntry {
	return model.NewHistoryEntry(userID, channelID, "pods prod",
		model.IntentListPods, model.Success("NAME   READY"))
}

func TestHistoryRepo_CreateAndList(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewHistoryRepo(store)
	ctx := context.Background()

	entry := makeHistoryEntry("U1", "C1")
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := repo.List(ctx, outbound.HistoryFilter{UserID: "U1"}, outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("TotalCount: got %d want 1", page.TotalCount)
	}
	got := page.Items[0]
	if got.ID != entry.ID {
		t.Errorf("ID mismatch")
	}
	if got.Command != "pods prod" {
		t.Errorf("Command: got %q", got.Command)
	}
	if got.Kind != model.IntentListPods {
		t.Errorf("Kind: got %s", got.Kind)
	}
	if got.Status != model.ResultSuccess {
		t.Errorf("Status: got %s", got.Status)
	}
}

func TestHistoryRepo_FiltersByUser(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewHistoryRepo(store)
	ctx := context.Background()

	if err := repo.Create(ctx, makeHistoryEntry("U1", "C1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, makeHistoryEntry("U2", "C1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := repo.List(ctx, outbound.HistoryFilter{UserID: "U2"}, outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("TotalCount: got %d want 1", page.TotalCount)
	}
	if len(page.Items) != 1 || page.Items[0].UserID != "U2" {
		t.Errorf("expected only U2 entries, got %+v", page.Items)
	}
}

func TestHistoryRepo_Pagination(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewHistoryRepo(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := makeHistoryEntry("U1", "C1")
		e.CreatedAt = time.Date(2026, 1, 1, 12, i, 0, 0, time.UTC)
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := repo.List(ctx, outbound.HistoryFilter{UserID: "U1"},
		outbound.PageRequest{Page: 1, Size: 2, Desc: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 5 {
		t.Errorf("TotalCount: got %d want 5", page.TotalCount)
	}
	if len(page.Items) != 2 {
		t.Fatalf("Items: got %d want 2", len(page.Items))
	}
	// Descending order, page 1 skips the two newest rows.
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		t.Errorf("expected descending created_at order")
	}
	if got := page.Items[0].CreatedAt.Minute(); got != 2 {
		t.Errorf("expected third-newest row first, got minute %d", got)
	}
}

func TestHistoryRepo_SinceFilter(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewHistoryRepo(store)
	ctx := context.Background()

	old := makeHistoryEntry("U1", "C1")
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := makeHistoryEntry("U1", "C1")
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []model.HistoryEntry{old, recent} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	page, err := repo.List(ctx, outbound.HistoryFilter{UserID: "U1", Since: &since}, outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 1 {
		t.Errorf("TotalCount: got %d want 1", page.TotalCount)
	}
	if len(page.Items) == 1 && page.Items[0].ID != recent.ID {
		t.Errorf("expected the recent entry, got %s", page.Items[0].ID)
	}
}
