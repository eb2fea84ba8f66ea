package task

import (
	"fmt"
	"time"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
)

// Lifecycle mutators are pure: each takes a task value, returns the updated
// copy plus the event(s) to append, and never touches shared state. Event
// IDs are assigned by the event store on append.

// SetStatus moves a task to newStatus. All transitions between the four
// states are legal; only values outside the enumeration are rejected, in
// which case no mutation happens and no event is produced.
func SetStatus(t Task, newStatus Status, actor activity.Actor, now time.Time) (Task, activity.Event, error) {
	if !ValidStatus(newStatus) {
		return t, activity.Event{}, fmt.Errorf("set status %q: %w", newStatus, domain.ErrInvalidStatus)
	}

	old := t.Status
	t.Status = newStatus
	t.UpdatedAt = now

	ev := newEvent(t, activity.TypeStatusChange, actor, now,
		fmt.Sprintf("Status changed from %s to %s", old, newStatus),
		activity.Metadata{OldStatus: string(old), NewStatus: string(newStatus)})
	return t, ev, nil
}

// SetFlag toggles the "needs attention" overlay. The reason is optional free
// text and is cleared when the flag is removed. Flag state is independent of
// status; a DONE task may stay flagged as a historical marker.
func SetFlag(t Task, flagged bool, reason string, actor activity.Actor, now time.Time) (Task, activity.Event) {
	t.Flagged = flagged
	t.UpdatedAt = now

	if flagged {
		t.FlagReason = reason
		return t, newEvent(t, activity.TypeFlagAdded, actor, now,
			"Task flagged", activity.Metadata{FlagReason: reason})
	}

	t.FlagReason = ""
	return t, newEvent(t, activity.TypeFlagRemoved, actor, now,
		"Flag removed", activity.Metadata{})
}

// BlockOptions carries the optional context of a block.
type BlockOptions struct {
	Reason           string `json:"reason,omitempty"`
	DependencyTaskID string `json:"dependency_task_id,omitempty"`
	Note             string `json:"note,omitempty"`
}

// SetBlocked sets or clears the block overlay. Marking blocked does not
// force Status to BLOCKED: status and block are independently-settable
// signals and may disagree (IN_PROGRESS yet blocked is a valid state).
func SetBlocked(t Task, isBlocked bool, opts BlockOptions, actor activity.Actor, now time.Time) (Task, activity.Event) {
	t.UpdatedAt = now

	if isBlocked {
		t.Block = Block{
			IsBlocked:        true,
			Reason:           opts.Reason,
			DependencyTaskID: opts.DependencyTaskID,
			Note:             opts.Note,
		}
		return t, newEvent(t, activity.TypeBlocked, actor, now,
			"Task blocked", activity.Metadata{
				BlockReason:      opts.Reason,
				DependencyTaskID: opts.DependencyTaskID,
				Note:             opts.Note,
			})
	}

	reason := t.Block.Reason
	t.Block = Block{}
	return t, newEvent(t, activity.TypeUnblocked, actor, now,
		"Task unblocked", activity.Metadata{BlockReason: reason})
}

// SetDependency annotates what external party the task waits on. Moving to
// NONE emits a dependency-removed event; anything else marks one.
func SetDependency(t Task, depType DependencyType, note string, actor activity.Actor, now time.Time) (Task, activity.Event, error) {
	if !ValidDependencyType(depType) {
		return t, activity.Event{}, fmt.Errorf("set dependency %q: %w", depType, domain.ErrValidation)
	}

	t.DependencyType = depType
	t.DependencyNote = note
	t.UpdatedAt = now

	if depType == DependencyNone {
		t.DependencyNote = ""
		return t, newEvent(t, activity.TypeDependencyRemoved, actor, now,
			"Dependency cleared", activity.Metadata{DependencyType: string(depType)}), nil
	}

	return t, newEvent(t, activity.TypeDependencyMarked, actor, now,
		fmt.Sprintf("Waiting on %s", depType),
		activity.Metadata{DependencyType: string(depType), Note: note}), nil
}

// AddPhoto appends an opaque media reference to the task's photo list.
func AddPhoto(t Task, mediaID string, actor activity.Actor, now time.Time) (Task, activity.Event) {
	t.Images = appendImage(t.Images, mediaID)
	t.UpdatedAt = now
	return t, newEvent(t, activity.TypeImageUpload, actor, now,
		"Photo uploaded", activity.Metadata{MediaID: mediaID})
}

// AddNote records a free-text comment against the task.
func AddNote(t Task, note string, actor activity.Actor, now time.Time) (Task, activity.Event) {
	t.UpdatedAt = now
	return t, newEvent(t, activity.TypeCommentAdded, actor, now,
		"Note added", activity.Metadata{Note: note})
}

// Complete marks the task DONE, attaches any completion photos, and clears
// an active block: a completed task cannot remain a live blocker. It is the
// one command that may emit more than one event.
func Complete(t Task, mediaIDs []string, actor activity.Actor, now time.Time) (Task, []activity.Event, error) {
	updated, statusEv, err := SetStatus(t, StatusDone, actor, now)
	if err != nil {
		return t, nil, err
	}

	events := []activity.Event{statusEv}

	for _, id := range mediaIDs {
		var ev activity.Event
		updated, ev = AddPhoto(updated, id, actor, now)
		events = append(events, ev)
	}

	if updated.Block.IsBlocked {
		var ev activity.Event
		updated, ev = SetBlocked(updated, false, BlockOptions{}, actor, now)
		events = append(events, ev)
	}

	return updated, events, nil
}

// NewCreatedEvent is the audit entry appended when a task first enters the
// store, whether generated or manual.
func NewCreatedEvent(t Task, actor activity.Actor, now time.Time) activity.Event {
	return newEvent(t, activity.TypeCreated, actor, now,
		fmt.Sprintf("Task created (%s)", t.CreatedFrom), activity.Metadata{NewStatus: string(t.Status)})
}

func newEvent(t Task, typ activity.Type, actor activity.Actor, now time.Time, details string, meta activity.Metadata) activity.Event {
	return activity.Event{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		Type:      typ,
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Timestamp: now,
		Details:   details,
		Metadata:  meta,
	}
}

// appendImage copies before appending so callers holding the old slice never
// observe the mutation.
func appendImage(images []string, mediaID string) []string {
	out := make([]string, 0, len(images)+1)
	out = append(out, images...)
	return append(out, mediaID)
}
