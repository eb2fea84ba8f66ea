package task

import "github.com/Strob0t/SiteForge/internal/domain/boq"

// Stats are simple counts over a task set, recomputed on demand.
type Stats struct {
	Total      int `json:"total"`
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Blocked    int `json:"blocked"`
	Done       int `json:"done"`
}

// ComputeStats counts tasks by status.
func ComputeStats(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusNotStarted:
			s.NotStarted++
		case StatusInProgress:
			s.InProgress++
		case StatusBlocked:
			s.Blocked++
		case StatusDone:
			s.Done++
		}
	}
	return s
}

// Reserved group names for the catch-all partitions.
const (
	GroupGeneral     = "General"
	GroupHygiene     = "Hygiene"
	GroupUnallocated = "Unallocated"
)

// RoomGroup is a display partition of non-PM tasks.
type RoomGroup struct {
	RoomID string `json:"room_id,omitempty"`
	Name   string `json:"name"`
	Tasks  []Task `json:"tasks"`
}

// GroupByRoom partitions non-PM tasks for display: one group per room in
// the given room order, then General and Hygiene catch-alls, then an
// Unallocated group for roomless tasks. PM tasks are skipped; they group by
// dependency type. Empty groups are omitted.
func GroupByRoom(tasks []Task, rooms []boq.Room) []RoomGroup {
	known := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		known[room.ID] = struct{}{}
	}

	byRoom := make(map[string][]Task)
	var general, hygiene, unallocated []Task

	for _, t := range tasks {
		_, roomKnown := known[t.RoomID]
		switch {
		case t.RoleCategory == RolePM:
			continue
		case t.IsGeneralTask:
			general = append(general, t)
		case t.IsHygieneTask:
			hygiene = append(hygiene, t)
		case t.RoomID != "" && roomKnown:
			byRoom[t.RoomID] = append(byRoom[t.RoomID], t)
		default:
			// Roomless tasks and rooms missing from the snapshot.
			unallocated = append(unallocated, t)
		}
	}

	var groups []RoomGroup
	for _, room := range rooms {
		if ts := byRoom[room.ID]; len(ts) > 0 {
			groups = append(groups, RoomGroup{RoomID: room.ID, Name: room.Name, Tasks: ts})
		}
	}

	if len(general) > 0 {
		groups = append(groups, RoomGroup{Name: GroupGeneral, Tasks: general})
	}
	if len(hygiene) > 0 {
		groups = append(groups, RoomGroup{Name: GroupHygiene, Tasks: hygiene})
	}
	if len(unallocated) > 0 {
		groups = append(groups, RoomGroup{Name: GroupUnallocated, Tasks: unallocated})
	}
	return groups
}

// DependencyGroup is a display partition of PM tasks.
type DependencyGroup struct {
	Type  DependencyType `json:"type"`
	Tasks []Task         `json:"tasks"`
}

// dependencyOrder is the fixed display order for PM groups.
var dependencyOrder = []DependencyType{
	DependencyArchitect,
	DependencyClient,
	DependencyThirdParty,
	DependencyNone,
}

// GroupByDependency partitions PM tasks by what they are waiting on.
// Non-PM tasks are skipped; an unset dependency counts as NONE. Empty
// groups are omitted.
func GroupByDependency(tasks []Task) []DependencyGroup {
	byType := make(map[DependencyType][]Task)
	for _, t := range tasks {
		if t.RoleCategory != RolePM {
			continue
		}
		depType := t.DependencyType
		if depType == "" {
			depType = DependencyNone
		}
		byType[depType] = append(byType[depType], t)
	}

	var groups []DependencyGroup
	for _, depType := range dependencyOrder {
		if ts := byType[depType]; len(ts) > 0 {
			groups = append(groups, DependencyGroup{Type: depType, Tasks: ts})
		}
	}
	return groups
}
