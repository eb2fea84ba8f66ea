package boq

// Aggregate computes the line-level StageSet from per-unit stages. A stage is
// true in aggregate only when every unit has reached it. An empty unit list
// yields the zero StageSet; callers should treat the line's own Stages as
// authoritative in that case.
func Aggregate(units []Unit) StageSet {
	if len(units) == 0 {
		return StageSet{}
	}

	agg := StageSet{
		Ordered:    true,
		Assigned:   true,
		Delivered:  true,
		Installed:  true,
		Programmed: true,
		QCed:       true,
	}
	for _, u := range units {
		agg.Ordered = agg.Ordered && u.Stages.Ordered
		agg.Assigned = agg.Assigned && u.Stages.Assigned
		agg.Delivered = agg.Delivered && u.Stages.Delivered
		agg.Installed = agg.Installed && u.Stages.Installed
		agg.Programmed = agg.Programmed && u.Stages.Programmed
		agg.QCed = agg.QCed && u.Stages.QCed
	}
	return agg
}

// EffectiveStages returns the authoritative StageSet for a line: the unit
// aggregate when per-unit tracking exists, the line's own stages otherwise.
func (i Item) EffectiveStages() StageSet {
	if len(i.Units) > 0 {
		return Aggregate(i.Units)
	}
	return i.Stages
}

// Bottleneck labels for each unmet pipeline stage, in pipeline order.
var bottleneckLabels = map[Stage]string{
	StageOrdered:    "Not Ordered",
	StageAssigned:   "Not Assigned",
	StageDelivered:  "Not Delivered",
	StageInstalled:  "Not Installed",
	StageProgrammed: "Not Programmed",
	StageQCed:       "Not QCed",
}

// BottleneckComplete is returned when every pipeline stage is met.
const BottleneckComplete = "Complete"

// Bottleneck returns the label of the first pipeline stage that is false in
// the given StageSet, or BottleneckComplete when all stages are true. Units
// disagreeing mid-rollout is the expected steady state, not an error.
func Bottleneck(s StageSet) string {
	for _, stage := range PipelineOrder {
		if !s.Get(stage) {
			return bottleneckLabels[stage]
		}
	}
	return BottleneckComplete
}

// Rollup is the derived per-line view consumed by dashboard widgets.
type Rollup struct {
	ItemID     string   `json:"item_id"`
	Aggregate  StageSet `json:"aggregate"`
	Bottleneck string   `json:"bottleneck"`
	UnitCount  int      `json:"unit_count"`
	Complete   bool     `json:"complete"`
}

// RollupFor computes the full derived view for one BOQ line.
func RollupFor(item Item) Rollup {
	agg := item.EffectiveStages()
	b := Bottleneck(agg)
	return Rollup{
		ItemID:     item.ID,
		Aggregate:  agg,
		Bottleneck: b,
		UnitCount:  len(item.Units),
		Complete:   b == BottleneckComplete,
	}
}
