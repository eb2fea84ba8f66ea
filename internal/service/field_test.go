package service

import (
	"context"
	"testing"

	"github.com/Strob0t/SiteForge/internal/adapter/memory"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/task"
)

func newFieldFixture(t *testing.T) (*FieldService, *memory.Store, *memory.EventStore) {
	t.Helper()
	store := memory.NewStore()
	events := memory.NewEventStore()

	tk := task.Task{ID: "task-boq-001-tpl-1", ProjectID: "p1", Title: "Install - Keypad", Status: task.StatusInProgress}
	if err := store.InsertTask(context.Background(), &tk); err != nil {
		t.Fatal(err)
	}

	return NewFieldService(NewLifecycleService(store, events, &mockQueue{}, &mockHub{})), store, events
}

func TestFieldCompleteTask(t *testing.T) {
	svc, store, events := newFieldFixture(t)
	ctx := context.Background()

	done, err := svc.CompleteTask(ctx, "task-boq-001-tpl-1", []string{"media-1", "media-2"}, testActor)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != task.StatusDone {
		t.Fatalf("unexpected status %q", done.Status)
	}
	if len(done.Images) != 2 {
		t.Fatalf("expected 2 photos, got %v", done.Images)
	}

	stored, _ := store.GetTask(ctx, "task-boq-001-tpl-1")
	if stored.Status != task.StatusDone {
		t.Fatal("completion not persisted")
	}

	history, _ := events.LoadByTask(ctx, "task-boq-001-tpl-1")
	if len(history) != 3 {
		t.Fatalf("expected status + 2 photo events, got %d", len(history))
	}
	if history[0].Type != activity.TypeStatusChange ||
		history[1].Type != activity.TypeImageUpload ||
		history[2].Type != activity.TypeImageUpload {
		t.Fatalf("unexpected event order %+v", history)
	}
}

func TestFieldCompleteClearsBlock(t *testing.T) {
	svc, _, events := newFieldFixture(t)
	ctx := context.Background()

	if _, err := svc.SetBlocked(ctx, "task-boq-001-tpl-1", true, task.BlockOptions{Reason: "awaiting paint"}, testActor); err != nil {
		t.Fatal(err)
	}

	done, err := svc.CompleteTask(ctx, "task-boq-001-tpl-1", nil, testActor)
	if err != nil {
		t.Fatal(err)
	}
	if done.Block.IsBlocked {
		t.Fatal("completed task still holds a live block")
	}

	history, _ := events.LoadByTask(ctx, "task-boq-001-tpl-1")
	last := history[len(history)-1]
	if last.Type != activity.TypeUnblocked {
		t.Fatalf("expected trailing unblocked event, got %q", last.Type)
	}
}

func TestFieldFlagWithEvidence(t *testing.T) {
	svc, _, events := newFieldFixture(t)
	ctx := context.Background()

	flagged, err := svc.FlagTask(ctx, "task-boq-001-tpl-1", "device damaged", "rear casing cracked", []string{"media-9"}, testActor)
	if err != nil {
		t.Fatal(err)
	}
	if !flagged.Flagged || flagged.FlagReason != "device damaged" {
		t.Fatalf("flag not applied: %+v", flagged)
	}
	if len(flagged.Images) != 1 {
		t.Fatalf("expected evidence photo, got %v", flagged.Images)
	}

	history, _ := events.LoadByTask(ctx, "task-boq-001-tpl-1")
	if len(history) != 3 ||
		history[0].Type != activity.TypeFlagAdded ||
		history[1].Type != activity.TypeImageUpload ||
		history[2].Type != activity.TypeCommentAdded {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestFieldAddPhotoAndNote(t *testing.T) {
	svc, store, events := newFieldFixture(t)
	ctx := context.Background()

	if _, err := svc.AddPhoto(ctx, "task-boq-001-tpl-1", "media-5", testActor); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddNote(ctx, "task-boq-001-tpl-1", "second fix done, awaiting QC", testActor); err != nil {
		t.Fatal(err)
	}

	stored, _ := store.GetTask(ctx, "task-boq-001-tpl-1")
	if len(stored.Images) != 1 || stored.Images[0] != "media-5" {
		t.Fatalf("photo not persisted: %v", stored.Images)
	}

	history, _ := events.LoadByTask(ctx, "task-boq-001-tpl-1")
	if len(history) != 2 ||
		history[0].Type != activity.TypeImageUpload ||
		history[1].Type != activity.TypeCommentAdded {
		t.Fatalf("unexpected history %+v", history)
	}
	if history[1].Metadata.Note != "second fix done, awaiting QC" {
		t.Fatalf("note not recorded: %+v", history[1].Metadata)
	}
}
