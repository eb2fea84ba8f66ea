package http

import (
	"net/http"
	"strconv"

	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/middleware"
	"github.com/Strob0t/SiteForge/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Generation *service.GenerationService
	Lifecycle  *service.LifecycleService
	Field      *service.FieldService
	Views      *service.ViewService
	Activity   *service.ActivityService
	BOQ        *service.BOQService
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// GenerateTasks runs a generation sync over the project's BOQ.
func (h *Handlers) GenerateTasks(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	actor := middleware.ActorFromContext(r.Context())

	result, err := h.Generation.Sync(r.Context(), projectID, actor)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateTask creates a manual task under a project.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID := urlParam(r, "id")
	req, ok := readJSON[task.CreateManualRequest](w, r)
	if !ok {
		return
	}

	created, err := h.Generation.CreateManualTask(r.Context(), projectID, req, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ---------------------------------------------------------------------------
// Task commands
// ---------------------------------------------------------------------------

type statusRequest struct {
	Status task.Status `json:"status"`
}

// SetTaskStatus moves a task to a new status.
func (h *Handlers) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, string(req.Status), "status") {
		return
	}

	updated, err := h.Lifecycle.SetStatus(r.Context(), urlParam(r, "id"), req.Status, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type completeRequest struct {
	MediaIDs []string `json:"media_ids,omitempty"`
}

// CompleteTask marks a task done with optional completion photos.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[completeRequest](w, r)
	if !ok {
		return
	}

	updated, err := h.Field.CompleteTask(r.Context(), urlParam(r, "id"), req.MediaIDs, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type flagRequest struct {
	Flagged  bool     `json:"flagged"`
	Reason   string   `json:"reason,omitempty"`
	Note     string   `json:"note,omitempty"`
	MediaIDs []string `json:"media_ids,omitempty"`
}

// FlagTask raises or clears the attention flag. Raising may attach evidence
// photos and a note in the same request.
func (h *Handlers) FlagTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[flagRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	taskID := urlParam(r, "id")

	var (
		updated *task.Task
		err     error
	)
	if req.Flagged {
		updated, err = h.Field.FlagTask(r.Context(), taskID, req.Reason, req.Note, req.MediaIDs, actor)
	} else {
		updated, err = h.Lifecycle.SetFlag(r.Context(), taskID, false, "", actor)
	}
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type blockRequest struct {
	IsBlocked        bool   `json:"is_blocked"`
	Reason           string `json:"reason,omitempty"`
	DependencyTaskID string `json:"dependency_task_id,omitempty"`
	Note             string `json:"note,omitempty"`
}

// BlockTask sets or clears the block overlay.
func (h *Handlers) BlockTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[blockRequest](w, r)
	if !ok {
		return
	}

	updated, err := h.Field.SetBlocked(r.Context(), urlParam(r, "id"), req.IsBlocked, task.BlockOptions{
		Reason:           req.Reason,
		DependencyTaskID: req.DependencyTaskID,
		Note:             req.Note,
	}, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type dependencyRequest struct {
	Type task.DependencyType `json:"type"`
	Note string              `json:"note,omitempty"`
}

// SetTaskDependency annotates what external party the task waits on.
func (h *Handlers) SetTaskDependency(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[dependencyRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, string(req.Type), "type") {
		return
	}

	updated, err := h.Lifecycle.SetDependency(r.Context(), urlParam(r, "id"), req.Type, req.Note, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type photoRequest struct {
	MediaID string `json:"media_id"`
}

// AddTaskPhoto attaches a photo reference to a task.
func (h *Handlers) AddTaskPhoto(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[photoRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.MediaID, "media_id") {
		return
	}

	updated, err := h.Field.AddPhoto(r.Context(), urlParam(r, "id"), req.MediaID, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type noteRequest struct {
	Note string `json:"note"`
}

// AddTaskNote records a free-text comment against a task.
func (h *Handlers) AddTaskNote(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[noteRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Note, "note") {
		return
	}

	updated, err := h.Field.AddNote(r.Context(), urlParam(r, "id"), req.Note, middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// RoomGroups returns the non-PM task groups of a project.
func (h *Handlers) RoomGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Views.RoomGroups(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if groups == nil {
		groups = []task.RoomGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// DependencyGroups returns the PM task groups of a project.
func (h *Handlers) DependencyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Views.DependencyGroups(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if groups == nil {
		groups = []task.DependencyGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// ProjectStats returns status counts over a project's tasks.
func (h *Handlers) ProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Views.Stats(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// BOQRollups returns the per-line aggregate and bottleneck views.
func (h *Handlers) BOQRollups(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.Views.Rollups(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if rollups == nil {
		rollups = []boq.Rollup{}
	}
	writeJSON(w, http.StatusOK, rollups)
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

// TaskHistory returns a task's audit trail oldest first.
func (h *Handlers) TaskHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.Activity.TaskHistory(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// ProjectFeed returns a page of a project's activity, newest first.
func (h *Handlers) ProjectFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.Activity.ProjectFeed(r.Context(), urlParam(r, "id"), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ---------------------------------------------------------------------------
// BOQ
// ---------------------------------------------------------------------------

type roomRequest struct {
	Name string `json:"name"`
}

// CreateRoom adds a room to a project.
func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[roomRequest](w, r)
	if !ok {
		return
	}

	room, err := h.BOQ.CreateRoom(r.Context(), urlParam(r, "id"), req.Name)
	if err != nil {
		writeDomainError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// EnsureUnits starts per-unit tracking on a BOQ line.
func (h *Handlers) EnsureUnits(w http.ResponseWriter, r *http.Request) {
	item, err := h.BOQ.EnsureUnits(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "boq item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type unitStageRequest struct {
	Stage boq.Stage `json:"stage"`
	Value bool      `json:"value"`
}

// SetUnitStage flips one pipeline stage on one unit.
func (h *Handlers) SetUnitStage(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[unitStageRequest](w, r)
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	item, err := h.BOQ.SetUnitStage(r.Context(), urlParam(r, "id"), urlParam(r, "unitID"), req.Stage, req.Value, actor.UserID)
	if err != nil {
		writeDomainError(w, err, "unit not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type allocateRequest struct {
	RoomID string `json:"room_id"`
}

// AllocateUnit assigns a unit to a room.
func (h *Handlers) AllocateUnit(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[allocateRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.RoomID, "room_id") {
		return
	}

	item, err := h.BOQ.AllocateUnit(r.Context(), urlParam(r, "id"), urlParam(r, "unitID"), req.RoomID)
	if err != nil {
		writeDomainError(w, err, "unit not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}
