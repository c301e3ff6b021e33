package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/service"
)

func pendingScale(userID string, replicas int32, ttl time.Duration) model.PendingAction {
	intent := model.Intent{Kind: model.IntentScaleDeployment, Name: "web", Namespace: "prod", Replicas: replicas}
	return model.NewPendingAction(userID, "C1", intent, ttl)
}

func TestPendingStore_PutTake(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, time.Minute))

	action, ok := store.Take("U1", "C1")
	if !ok {
		t.Fatal("expected pending action")
	}
	if action.Intent.Name != "web" {
		t.Errorf("unexpected intent: %+v", action.Intent)
	}

	// Take consumes.
	if _, ok := store.Take("U1", "C1"); ok {
		t.Error("second take must find nothing")
	}
}

func TestPendingStore_TakeMissesOtherKeys(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, time.Minute))

	if _, ok := store.Take("U2", "C1"); ok {
		t.Error("other user must not take the action")
	}
	if _, ok := store.Take("U1", "C2"); ok {
		t.Error("other channel must not take the action")
	}
	if _, ok := store.Take("U1", "C1"); !ok {
		t.Error("owner's action must survive misses")
	}
}

func TestPendingStore_PutSupersedes(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, time.Minute))
	store.Put(pendingScale("U1", 5, time.Minute))

	action, ok := store.Take("U1", "C1")
	if !ok {
		t.Fatal("expected pending action")
	}
	if action.Intent.Replicas != 5 {
		t.Errorf("expected latest action to win, got replicas=%d", action.Intent.Replicas)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}

func TestPendingStore_ExpiredLooksAbsent(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	if _, ok := store.Peek("U1", "C1"); ok {
		t.Error("peek must not see an expired action")
	}
	if _, ok := store.Take("U1", "C1"); ok {
		t.Error("take must not return an expired action")
	}
}

func TestPendingStore_Sweep(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, 10*time.Millisecond))
	store.Put(pendingScale("U2", 0, time.Hour))
	time.Sleep(25 * time.Millisecond)

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("expected 1 swept entry, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 surviving entry, got %d", store.Len())
	}
}

func TestPendingStore_ConcurrentTakeIsExclusive(t *testing.T) {
	store := service.NewPendingStore()
	store.Put(pendingScale("U1", 0, time.Minute))

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take("U1", "C1"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("exactly one take must win, got %d", won)
	}
}

func TestJobRegistry_ListNewestFirst(t *testing.T) {
	reg := service.NewJobRegistry()
	first := model.NewAsyncJob("U1", "C1", model.Intent{Kind: model.IntentExecAsync})
	first.StartedAt = first.StartedAt.Add(-time.Minute)
	second := model.NewAsyncJob("U1", "C1", model.Intent{Kind: model.IntentExecAsync})
	reg.Put(first)
	reg.Put(second)

	jobs := reg.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != second.ID {
		t.Errorf("expected newest job first, got %s", jobs[0].ID)
	}
}

func TestJobRegistry_CleanupKeepsRunning(t *testing.T) {
	reg := service.NewJobRegistry()
	running := model.NewAsyncJob("U1", "C1", model.Intent{Kind: model.IntentExecAsync})
	running.StartedAt = running.StartedAt.Add(-2 * time.Hour)
	reg.Put(running)

	finished := model.NewAsyncJob("U1", "C1", model.Intent{Kind: model.IntentExecAsync}).WithResult(model.Success(""))
	finished.FinishedAt = finished.FinishedAt.Add(-2 * time.Hour)
	reg.Put(finished)

	if removed := reg.Cleanup(time.Hour); removed != 1 {
		t.Errorf("expected 1 removed job, got %d", removed)
	}
	if _, ok := reg.Get(running.ID); !ok {
		t.Error("running job must never be cleaned up")
	}
	if _, ok := reg.Get(finished.ID); ok {
		t.Error("old finished job must be cleaned up")
	}
}
