// Package boq defines the bill-of-quantities domain entities: line items,
// rooms, and per-unit stage tracking for multi-quantity lines.
package boq

import "time"

// DispatchStatus is the procurement-level status of a BOQ line.
type DispatchStatus string

const (
	DispatchReady   DispatchStatus = "ready"
	DispatchPending DispatchStatus = "pending"
)

// Item is a single procured line in the bill of quantities. The task engine
// reads items; it never authors them.
type Item struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Quantity  int            `json:"quantity"`
	Area      string         `json:"area,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Status    DispatchStatus `json:"status"`

	// Stages is authoritative only while Units is empty. Once per-unit
	// tracking starts, the line-level value is derived via Aggregate.
	Stages StageSet `json:"stages"`
	Units  []Unit   `json:"units,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveQuantity treats invalid or zero quantities as a single unit.
func (i Item) EffectiveQuantity() int {
	if i.Quantity < 1 {
		return 1
	}
	return i.Quantity
}

// Room is a physical location a task or unit can be allocated to.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Unit is one physical piece of a multi-quantity BOQ line, tracked
// independently through the installation pipeline.
type Unit struct {
	UnitID        string    `json:"unit_id"`
	UnitNumber    int       `json:"unit_number"`
	RoomID        string    `json:"room_id,omitempty"`
	Stages        StageSet  `json:"stages"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	LastUpdatedBy string    `json:"last_updated_by,omitempty"`
}

// StageSet is the fixed ordered pipeline every unit moves through.
type StageSet struct {
	Ordered    bool `json:"ordered"`
	Assigned   bool `json:"assigned"`
	Delivered  bool `json:"delivered"`
	Installed  bool `json:"installed"`
	Programmed bool `json:"programmed"`
	QCed       bool `json:"qced"`
}

// Stage identifies one field of the StageSet pipeline.
type Stage string

const (
	StageOrdered    Stage = "ordered"
	StageAssigned   Stage = "assigned"
	StageDelivered  Stage = "delivered"
	StageInstalled  Stage = "installed"
	StageProgrammed Stage = "programmed"
	StageQCed       Stage = "qced"
)

// PipelineOrder is the canonical stage order used for bottleneck detection.
var PipelineOrder = []Stage{
	StageOrdered,
	StageAssigned,
	StageDelivered,
	StageInstalled,
	StageProgrammed,
	StageQCed,
}

// Get returns the value of the named stage.
func (s StageSet) Get(stage Stage) bool {
	switch stage {
	case StageOrdered:
		return s.Ordered
	case StageAssigned:
		return s.Assigned
	case StageDelivered:
		return s.Delivered
	case StageInstalled:
		return s.Installed
	case StageProgrammed:
		return s.Programmed
	case StageQCed:
		return s.QCed
	}
	return false
}

// Set returns a copy of the StageSet with the named stage set to v.
func (s StageSet) Set(stage Stage, v bool) StageSet {
	switch stage {
	case StageOrdered:
		s.Ordered = v
	case StageAssigned:
		s.Assigned = v
	case StageDelivered:
		s.Delivered = v
	case StageInstalled:
		s.Installed = v
	case StageProgrammed:
		s.Programmed = v
	case StageQCed:
		s.QCed = v
	}
	return s
}

// ValidStage reports whether stage names a pipeline field.
func ValidStage(stage Stage) bool {
	for _, s := range PipelineOrder {
		if s == stage {
			return true
		}
	}
	return false
}
