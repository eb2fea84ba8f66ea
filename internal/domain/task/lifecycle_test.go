package task_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/task"
)

var (
	lcNow   = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	lcActor = activity.Actor{UserID: "u1", UserName: "Priya", Role: "INSTALLER"}
)

func baseTask() task.Task {
	return task.Task{
		ID:        "task-boq-001-tpl-1",
		ProjectID: "proj-1",
		Title:     "Install - Keypad KP-8",
		Status:    task.StatusNotStarted,
	}
}

func TestSetStatus(t *testing.T) {
	updated, ev, err := task.SetStatus(baseTask(), task.StatusInProgress, lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != task.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}
	if !updated.UpdatedAt.Equal(lcNow) {
		t.Fatal("expected UpdatedAt bump")
	}
	if ev.Type != activity.TypeStatusChange {
		t.Fatalf("unexpected event type %s", ev.Type)
	}
	if ev.Metadata.OldStatus != "NOT_STARTED" || ev.Metadata.NewStatus != "IN_PROGRESS" {
		t.Fatalf("metadata does not reflect transition: %+v", ev.Metadata)
	}
	if ev.UserID != "u1" || ev.UserName != "Priya" {
		t.Fatalf("event not attributed to actor: %+v", ev)
	}
}

func TestSetStatus_AnyDirectionLegal(t *testing.T) {
	// No illegal-transition table: DONE back to NOT_STARTED is allowed.
	tk := baseTask()
	tk.Status = task.StatusDone

	updated, _, err := task.SetStatus(tk, task.StatusNotStarted, lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != task.StatusNotStarted {
		t.Fatalf("expected NOT_STARTED, got %s", updated.Status)
	}
}

func TestSetStatus_InvalidRejectedWithoutMutation(t *testing.T) {
	original := baseTask()
	updated, _, err := task.SetStatus(original, task.Status("PAUSED"), lcActor, lcNow)
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if updated.Status != original.Status || !updated.UpdatedAt.Equal(original.UpdatedAt) {
		t.Fatal("rejected transition must not mutate the task")
	}
}

func TestSetFlag_RoundTrip(t *testing.T) {
	flagged, addEv := task.SetFlag(baseTask(), true, "damaged", lcActor, lcNow)
	if !flagged.Flagged || flagged.FlagReason != "damaged" {
		t.Fatalf("expected flagged with reason, got %+v", flagged)
	}
	if addEv.Type != activity.TypeFlagAdded || addEv.Metadata.FlagReason != "damaged" {
		t.Fatalf("unexpected flag event: %+v", addEv)
	}

	unflagged, removeEv := task.SetFlag(flagged, false, "", lcActor, lcNow.Add(time.Minute))
	if unflagged.Flagged || unflagged.FlagReason != "" {
		t.Fatalf("expected clean unflag, got %+v", unflagged)
	}
	if removeEv.Type != activity.TypeFlagRemoved {
		t.Fatalf("unexpected event type %s", removeEv.Type)
	}
}

func TestSetFlag_NoReasonRequired(t *testing.T) {
	flagged, _ := task.SetFlag(baseTask(), true, "", lcActor, lcNow)
	if !flagged.Flagged {
		t.Fatal("flag without reason must succeed")
	}
}

func TestSetFlag_IndependentOfStatus(t *testing.T) {
	tk := baseTask()
	tk.Status = task.StatusDone

	flagged, _ := task.SetFlag(tk, true, "snag found post-handover", lcActor, lcNow)
	if flagged.Status != task.StatusDone {
		t.Fatal("flagging must not change status")
	}
	if !flagged.Flagged {
		t.Fatal("DONE task may remain flagged as a historical marker")
	}
}

func TestSetBlocked_DoesNotForceStatus(t *testing.T) {
	tk := baseTask()
	tk.Status = task.StatusInProgress

	blocked, ev := task.SetBlocked(tk, true, task.BlockOptions{
		Reason:           "awaiting ceiling close-up",
		DependencyTaskID: "task-boq-002-tpl-3",
		Note:             "ceiling contractor on site Thursday",
	}, lcActor, lcNow)

	if !blocked.Block.IsBlocked {
		t.Fatal("expected active block")
	}
	if blocked.Status != task.StatusInProgress {
		t.Fatal("block overlay must not force status to BLOCKED")
	}
	if ev.Type != activity.TypeBlocked {
		t.Fatalf("unexpected event type %s", ev.Type)
	}
	if ev.Metadata.BlockReason != "awaiting ceiling close-up" || ev.Metadata.DependencyTaskID != "task-boq-002-tpl-3" {
		t.Fatalf("metadata incomplete: %+v", ev.Metadata)
	}
}

func TestSetBlocked_Clear(t *testing.T) {
	tk := baseTask()
	tk.Block = task.Block{IsBlocked: true, Reason: "no stock"}

	unblocked, ev := task.SetBlocked(tk, false, task.BlockOptions{}, lcActor, lcNow)
	if unblocked.Block.IsBlocked || unblocked.Block.Reason != "" {
		t.Fatalf("expected cleared block, got %+v", unblocked.Block)
	}
	if ev.Type != activity.TypeUnblocked {
		t.Fatalf("unexpected event type %s", ev.Type)
	}
}

func TestSetDependency(t *testing.T) {
	updated, ev, err := task.SetDependency(baseTask(), task.DependencyArchitect, "awaiting RCP revision", lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DependencyType != task.DependencyArchitect {
		t.Fatalf("unexpected dependency %s", updated.DependencyType)
	}
	if ev.Type != activity.TypeDependencyMarked || ev.Metadata.DependencyType != "ARCHITECT" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestSetDependency_NoneRemoves(t *testing.T) {
	tk := baseTask()
	tk.DependencyType = task.DependencyClient
	tk.DependencyNote = "PO pending"

	updated, ev, err := task.SetDependency(tk, task.DependencyNone, "", lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DependencyType != task.DependencyNone || updated.DependencyNote != "" {
		t.Fatalf("expected cleared dependency, got %+v", updated)
	}
	if ev.Type != activity.TypeDependencyRemoved {
		t.Fatalf("unexpected event type %s", ev.Type)
	}
}

func TestSetDependency_InvalidType(t *testing.T) {
	_, _, err := task.SetDependency(baseTask(), task.DependencyType("VENDOR"), "", lcActor, lcNow)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComplete_AttachesPhotosAndClearsBlock(t *testing.T) {
	tk := baseTask()
	tk.Status = task.StatusInProgress
	tk.Block = task.Block{IsBlocked: true, Reason: "awaiting parts"}

	updated, events, err := task.Complete(tk, []string{"media-1", "media-2"}, lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != task.StatusDone {
		t.Fatalf("expected DONE, got %s", updated.Status)
	}
	if updated.Block.IsBlocked {
		t.Fatal("completion must clear an active block")
	}
	if len(updated.Images) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(updated.Images))
	}

	// STATUS_CHANGE + 2x IMAGE_UPLOAD + TASK_UNBLOCKED.
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[0].Type != activity.TypeStatusChange {
		t.Fatalf("expected status change first, got %s", events[0].Type)
	}
	if events[len(events)-1].Type != activity.TypeUnblocked {
		t.Fatalf("expected unblock last, got %s", events[len(events)-1].Type)
	}
}

func TestComplete_NoBlockNoPhotos(t *testing.T) {
	updated, events, err := task.Complete(baseTask(), nil, lcActor, lcNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != task.StatusDone {
		t.Fatalf("expected DONE, got %s", updated.Status)
	}
	if len(events) != 1 {
		t.Fatalf("expected single status event, got %d", len(events))
	}
}

func TestAddPhoto_CopiesImageSlice(t *testing.T) {
	tk := baseTask()
	tk.Images = []string{"media-1"}

	updated, ev := task.AddPhoto(tk, "media-2", lcActor, lcNow)
	if len(tk.Images) != 1 {
		t.Fatal("original task's image slice must not be mutated")
	}
	if len(updated.Images) != 2 || updated.Images[1] != "media-2" {
		t.Fatalf("unexpected images %v", updated.Images)
	}
	if ev.Type != activity.TypeImageUpload || ev.Metadata.MediaID != "media-2" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestAddNote(t *testing.T) {
	_, ev := task.AddNote(baseTask(), "client prefers warm white", lcActor, lcNow)
	if ev.Type != activity.TypeCommentAdded || ev.Metadata.Note != "client prefers warm white" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
