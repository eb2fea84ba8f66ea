package task

import (
	"fmt"
	"time"

	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/template"
)

// GenerateInput is the immutable snapshot generation runs over.
type GenerateInput struct {
	ProjectID string
	Items     []boq.Item
	Rooms     []boq.Room
	Catalog   *template.Catalog
}

// Generate expands a BOQ snapshot into stakeholder tasks. It is pure and
// deterministic: identical input (including now) yields identical output,
// IDs included. The composite generated IDs are the idempotency guarantee:
// regenerating with the same BOQ and catalog always addresses the same
// records, never duplicates.
//
// System templates (no product category) each emit exactly one task per
// project regardless of BOQ contents. Every other template emits one task
// per BOQ item whose category matches; an item matching zero templates
// silently produces zero tasks.
func Generate(in GenerateInput, now time.Time) []Task {
	var tasks []Task

	for i, tpl := range in.Catalog.SystemTemplates() {
		tasks = append(tasks, Task{
			ID:             fmt.Sprintf("task-system-%d", i),
			ProjectID:      in.ProjectID,
			TaskTemplateID: tpl.ID,
			Title:          tpl.Title,
			Description:    tpl.Description,
			Stakeholder:    tpl.Stakeholder,
			Status:         StatusNotStarted,
			Priority:       priorityOrDefault(tpl.Priority, template.PriorityHigh),
			CreatedFrom:    OriginTemplate,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	for _, item := range in.Items {
		for _, tpl := range in.Catalog.MatchCategory(item.Category) {
			tasks = append(tasks, Task{
				ID:             fmt.Sprintf("task-%s-%s", item.ID, tpl.ID),
				ProjectID:      in.ProjectID,
				TaskTemplateID: tpl.ID,
				BOQItemID:      item.ID,
				Title:          fmt.Sprintf("%s - %s", tpl.Title, item.Name),
				Description:    tpl.Description,
				Stakeholder:    tpl.Stakeholder,
				Status:         StatusNotStarted,
				Priority:       priorityOrDefault(tpl.Priority, template.PriorityMedium),
				CreatedFrom:    OriginTemplate,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}
	}

	return tasks
}

// CreateManualRequest holds the fields for an out-of-band task.
type CreateManualRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Stakeholder template.Stakeholder `json:"stakeholder,omitempty"`
	Priority    template.Priority    `json:"priority,omitempty"`
	RoomID      string               `json:"room_id,omitempty"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
}

// NewManualTask builds a task outside the generation flow. Manual IDs live
// in their own namespace so they can never collide with generated IDs, and
// manual tasks are exempt from the idempotent-regeneration guarantee.
func NewManualTask(projectID string, req CreateManualRequest, now time.Time) Task {
	stakeholder := req.Stakeholder
	if stakeholder == "" {
		stakeholder = template.StakeholderPM
	}

	return Task{
		ID:          fmt.Sprintf("task-manual-%d", now.UnixMilli()),
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		RoomID:      req.RoomID,
		Stakeholder: stakeholder,
		Status:      StatusNotStarted,
		Priority:    priorityOrDefault(req.Priority, template.PriorityMedium),
		DueDate:     req.DueDate,
		CreatedFrom: OriginManual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func priorityOrDefault(p, fallback template.Priority) template.Priority {
	if p == "" {
		return fallback
	}
	return p
}
