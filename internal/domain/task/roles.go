package task

import (
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/template"
)

// Scope is the project context the role categorizer annotates against.
type Scope struct {
	// Items lets non-PM tasks inherit a room from any existing BOQ-unit
	// room allocation on their source line.
	Items []boq.Item
	// HasAutomationScope is true when the project carries an
	// automation/controls scope; without it programmer tasks are treated
	// as general work rather than per-room commissioning.
	HasAutomationScope bool
}

// automationCategory is the BOQ category whose presence gives a project an
// automation/controls scope.
const automationCategory = "Controls"

// ScopeFromItems derives the categorization scope from a project's BOQ
// snapshot. A project has automation scope when any line is a controls line.
func ScopeFromItems(items []boq.Item) Scope {
	scope := Scope{Items: items}
	for _, item := range items {
		if item.Category == automationCategory {
			scope.HasAutomationScope = true
			break
		}
	}
	return scope
}

// Categorize attaches the role category and role-specific grouping fields to
// a task. It is a pure annotation pass: Status is never altered. PM tasks
// get a dependency type (default NONE) and no room; they group by
// dependency, not location.
func Categorize(t Task, scope Scope) Task {
	t.RoleCategory = roleFor(t.Stakeholder)

	if t.RoleCategory == RolePM {
		if t.DependencyType == "" {
			t.DependencyType = DependencyNone
		}
		t.RoomID = ""
		t.IsGeneralTask = false
		t.IsHygieneTask = false
		return t
	}

	if t.RoomID == "" {
		t.RoomID = roomFromUnits(t.BOQItemID, scope.Items)
	}

	// Hygiene wins over General so a task lands in exactly one catch-all.
	t.IsHygieneTask = t.RoleCategory == RoleQC && t.BOQItemID == ""
	t.IsGeneralTask = !t.IsHygieneTask &&
		(t.BOQItemID == "" || (t.RoleCategory == RoleProgrammer && !scope.HasAutomationScope))

	return t
}

// roleFor maps the owning stakeholder onto its display category.
func roleFor(s template.Stakeholder) RoleCategory {
	switch s {
	case template.StakeholderInstaller:
		return RoleInstaller
	case template.StakeholderProgrammer:
		return RoleProgrammer
	case template.StakeholderQC:
		return RoleQC
	default:
		return RolePM
	}
}

// roomFromUnits returns the first room any unit of the task's BOQ line has
// been allocated to, or empty when the line is unallocated.
func roomFromUnits(boqItemID string, items []boq.Item) string {
	if boqItemID == "" {
		return ""
	}
	for _, item := range items {
		if item.ID != boqItemID {
			continue
		}
		for _, u := range item.Units {
			if u.RoomID != "" {
				return u.RoomID
			}
		}
	}
	return ""
}
