package sqlite_test

import (
	"context"
	"testing"

	"github.com/jonny/kubot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

func TestAuditRepo_CreateAndList(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewAuditRepo(store)
	ctx := context.Background()

	log := model.NewAuditLog(model.AuditConfirmationRequested, "U1", "C1", "scale machineset prod/workers to 0 replicas").
		WithIntentKind(model.IntentScaleMachineSet).
		WithMetadata("token", "CONFIRM")

	if err := repo.Create(ctx, log); err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := repo.List(ctx, outbound.AuditFilter{UserID: "U1"}, outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("TotalCount: got %d want 1", page.TotalCount)
	}
	got := page.Items[0]
	if got.EventType != model.AuditConfirmationRequested {
		t.Errorf("EventType: got %s", got.EventType)
	}
	if got.IntentKind != model.IntentScaleMachineSet {
		t.Errorf("IntentKind: got %s", got.IntentKind)
	}
	if got.Metadata["token"] != "CONFIRM" {
		t.Errorf("Metadata: got %v", got.Metadata)
	}
}

func TestAuditRepo_FiltersByEventType(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewAuditRepo(store)
	ctx := context.Background()

	events := []model.AuditEventType{
		model.AuditCommandReceived,
		model.AuditCommandDenied,
		model.AuditCommandReceived,
	}
	for _, ev := range events {
		if err := repo.Create(ctx, model.NewAuditLog(ev, "U1", "C1", "")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := repo.List(ctx,
		outbound.AuditFilter{EventType: model.AuditCommandReceived},
		outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalCount != 2 {
		t.Errorf("TotalCount: got %d want 2", page.TotalCount)
	}
	for _, it := range page.Items {
		if it.EventType != model.AuditCommandReceived {
			t.Errorf("unexpected event type %s", it.EventType)
		}
	}
}

func TestAuditRepo_EmptyMetadataRoundTrips(t *testing.T) {
	store := newTestStore(t)
	repo := sqlite.NewAuditRepo(store)
	ctx := context.Background()

	log := model.NewAuditLog(model.AuditIntentExecuted, "U1", "C1", "pods listed")
	if err := repo.Create(ctx, log); err != nil {
		t.Fatalf("Create: %v", err)
	}

	page, err := repo.List(ctx, outbound.AuditFilter{}, outbound.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("Items: got %d want 1", len(page.Items))
	}
	if page.Items[0].Metadata == nil {
		t.Error("expected non-nil metadata map")
	}
}
