package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Strob0t/SiteForge/internal/adapter/memory"
	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/domain/template"
	"github.com/Strob0t/SiteForge/internal/port/messagequeue"
)

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	published []struct {
		subject string
		data    []byte
	}
	publishErr error
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

// mockHub implements broadcast.Broadcaster for testing.
type mockHub struct {
	events []string
}

func (h *mockHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	h.events = append(h.events, eventType)
}

var testActor = activity.Actor{UserID: "u1", UserName: "Dana"}

func seedBOQ(t *testing.T, store *memory.Store) {
	t.Helper()
	items := []boq.Item{
		{ID: "boq-001", ProjectID: "p1", Name: "Keypad KP-8", Category: "Controls", Quantity: 4},
		{ID: "boq-002", ProjectID: "p1", Name: "Pendant Light", Category: "Lighting", Quantity: 12},
	}
	for i := range items {
		if err := store.CreateBOQItem(context.Background(), &items[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGenerationSyncCreatesTasks(t *testing.T) {
	store := memory.NewStore()
	events := memory.NewEventStore()
	queue := &mockQueue{}
	hub := &mockHub{}
	seedBOQ(t, store)

	svc := NewGenerationService(store, events, queue, hub, template.DefaultCatalog())

	result, err := svc.Sync(context.Background(), "p1", testActor)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Created == 0 || result.Created != result.Total {
		t.Fatalf("expected all tasks created, got %+v", result)
	}
	if result.Skipped != 0 {
		t.Fatalf("expected no skips on first sync, got %d", result.Skipped)
	}

	tasks, err := store.ListTasks(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != result.Created {
		t.Fatalf("store holds %d tasks, result says %d", len(tasks), result.Created)
	}

	// Every created task got an audit entry.
	for _, tk := range tasks {
		history, err := events.LoadByTask(context.Background(), tk.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 1 || history[0].Type != activity.TypeCreated {
			t.Fatalf("task %s: expected one created event, got %+v", tk.ID, history)
		}
	}

	if len(queue.published) != 1 || queue.published[0].subject != messagequeue.SubjectTasksGenerated {
		t.Fatalf("expected one tasks.generated publish, got %+v", queue.published)
	}
	if len(hub.events) != 1 {
		t.Fatalf("expected one broadcast, got %v", hub.events)
	}
}

func TestGenerationSyncIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	svc := NewGenerationService(store, memory.NewEventStore(), &mockQueue{}, &mockHub{}, template.DefaultCatalog())
	seedBOQ(t, store)

	first, err := svc.Sync(context.Background(), "p1", testActor)
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Sync(context.Background(), "p1", testActor)
	if err != nil {
		t.Fatal(err)
	}
	if second.Created != 0 {
		t.Fatalf("second sync created %d tasks", second.Created)
	}
	if second.Skipped != first.Total {
		t.Fatalf("expected %d skips, got %d", first.Total, second.Skipped)
	}
}

func TestGenerationSyncPicksUpNewItems(t *testing.T) {
	store := memory.NewStore()
	svc := NewGenerationService(store, memory.NewEventStore(), &mockQueue{}, &mockHub{}, template.DefaultCatalog())
	seedBOQ(t, store)

	first, err := svc.Sync(context.Background(), "p1", testActor)
	if err != nil {
		t.Fatal(err)
	}

	item := boq.Item{ID: "boq-003", ProjectID: "p1", Name: "Ceiling Speaker", Category: "AV", Quantity: 6}
	if err := store.CreateBOQItem(context.Background(), &item); err != nil {
		t.Fatal(err)
	}

	second, err := svc.Sync(context.Background(), "p1", testActor)
	if err != nil {
		t.Fatal(err)
	}
	if second.Created == 0 {
		t.Fatal("expected new tasks for the added AV line")
	}
	if second.Skipped != first.Total {
		t.Fatalf("existing tasks should be skipped, got %+v", second)
	}
}

func TestGenerationSyncCategorizes(t *testing.T) {
	store := memory.NewStore()
	svc := NewGenerationService(store, memory.NewEventStore(), &mockQueue{}, &mockHub{}, template.DefaultCatalog())
	seedBOQ(t, store)

	if _, err := svc.Sync(context.Background(), "p1", testActor); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.ListTasks(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	for _, tk := range tasks {
		if tk.RoleCategory == "" {
			t.Fatalf("task %s not categorized", tk.ID)
		}
		if tk.RoleCategory == task.RolePM && tk.DependencyType == "" {
			t.Fatalf("PM task %s missing dependency default", tk.ID)
		}
	}
}

func TestCreateManualTask(t *testing.T) {
	store := memory.NewStore()
	events := memory.NewEventStore()
	svc := NewGenerationService(store, events, &mockQueue{}, &mockHub{}, template.DefaultCatalog())

	created, err := svc.CreateManualTask(context.Background(), "p1",
		task.CreateManualRequest{Title: "Chase missing cable schedule"}, testActor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedFrom != task.OriginManual {
		t.Fatalf("unexpected origin %q", created.CreatedFrom)
	}
	if created.Stakeholder != template.StakeholderPM {
		t.Fatalf("expected PM default, got %q", created.Stakeholder)
	}

	history, err := events.LoadByTask(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Type != activity.TypeCreated {
		t.Fatalf("expected created event, got %+v", history)
	}
}

func TestCreateManualTaskRequiresTitle(t *testing.T) {
	svc := NewGenerationService(memory.NewStore(), memory.NewEventStore(), &mockQueue{}, &mockHub{}, template.DefaultCatalog())

	_, err := svc.CreateManualTask(context.Background(), "p1", task.CreateManualRequest{}, testActor)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
