// Package task defines the project task entity produced by BOQ generation
// and its lifecycle rules.
package task

import (
	"time"

	"github.com/Strob0t/SiteForge/internal/domain/template"
)

// Status is the execution state of a task.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusBlocked    Status = "BLOCKED"
	StatusDone       Status = "DONE"
)

// ValidStatus reports whether s is one of the four enumerated states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Origin records how a task came into existence.
type Origin string

const (
	OriginTemplate Origin = "TEMPLATE"
	OriginManual   Origin = "MANUAL"
)

// RoleCategory groups tasks by the role that works them.
type RoleCategory string

const (
	RolePM         RoleCategory = "PM"
	RoleInstaller  RoleCategory = "INSTALLER"
	RoleProgrammer RoleCategory = "PROGRAMMER"
	RoleQC         RoleCategory = "QC"
)

// DependencyType classifies what external party a PM task is waiting on.
type DependencyType string

const (
	DependencyArchitect  DependencyType = "ARCHITECT"
	DependencyClient     DependencyType = "CLIENT"
	DependencyThirdParty DependencyType = "THIRD_PARTY"
	DependencyNone       DependencyType = "NONE"
)

// ValidDependencyType reports whether d is one of the four dependency kinds.
func ValidDependencyType(d DependencyType) bool {
	switch d {
	case DependencyArchitect, DependencyClient, DependencyThirdParty, DependencyNone:
		return true
	}
	return false
}

// Block is the "cannot proceed" overlay. It is tracked independently of
// Status: a task can be IN_PROGRESS with an active block, and the two are
// deliberately not unified.
type Block struct {
	IsBlocked        bool   `json:"is_blocked"`
	Reason           string `json:"reason,omitempty"`
	DependencyTaskID string `json:"dependency_task_id,omitempty"`
	Note             string `json:"note,omitempty"`
}

// Task is a single stakeholder work item. Template-origin tasks always carry
// a TaskTemplateID; tasks with a BOQItemID were generated from exactly one
// BOQ line and one matching template.
type Task struct {
	ID             string               `json:"id"`
	ProjectID      string               `json:"project_id"`
	TaskTemplateID string               `json:"task_template_id,omitempty"`
	BOQItemID      string               `json:"boq_item_id,omitempty"`
	RoomID         string               `json:"room_id,omitempty"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	Stakeholder    template.Stakeholder `json:"stakeholder"`
	Status         Status               `json:"status"`
	Priority       template.Priority    `json:"priority"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	BlockerReason  string               `json:"blocker_reason,omitempty"`
	CreatedFrom    Origin               `json:"created_from"`

	// Role annotation (attached by Categorize, display grouping only).
	RoleCategory   RoleCategory   `json:"role_category,omitempty"`
	DependencyType DependencyType `json:"dependency_type,omitempty"`
	DependencyNote string         `json:"dependency_note,omitempty"`
	IsGeneralTask  bool           `json:"is_general_task,omitempty"`
	IsHygieneTask  bool           `json:"is_hygiene_task,omitempty"`

	// Overlays, independent of Status.
	Flagged    bool     `json:"flagged"`
	FlagReason string   `json:"flag_reason,omitempty"`
	Block      Block    `json:"block"`
	Images     []string `json:"images,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
