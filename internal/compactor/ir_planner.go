package compactor

// IRPlanner turns the raw material the File Classifier produced into
// zero or more abstract execution plans. Empty plans are never
// returned: a classification with no split_or_compact work yields no
// plans at all.
type IRPlanner interface {
	Plan(fc *FileClassification) []*PlanIR
}

type defaultIRPlanner struct{}

// NewIRPlanner returns the engine's default IRPlanner.
func NewIRPlanner() IRPlanner { return defaultIRPlanner{} }

// Plan implements IRPlanner. One Split plan is emitted per SplitInput;
// one Compact plan is emitted for the combined start+target level files
// destined to merge, provided that set is non-empty.
func (defaultIRPlanner) Plan(fc *FileClassification) []*PlanIR {
	var plans []*PlanIR

	for _, split := range fc.ProgressFiles.SplitOrCompact.SplitInputs {
		plans = append(plans, &PlanIR{
			Kind:        PlanSplit,
			TargetLevel: fc.TargetLevel,
			SplitInput:  split.File,
			SplitTimes:  split.SplitTimes,
		})
	}

	startFiles := fc.ProgressFiles.SplitOrCompact.StartLevelFiles
	targetFiles := fc.ProgressFiles.SplitOrCompact.TargetLevelFiles
	if len(startFiles) > 0 || len(targetFiles) > 0 {
		inputs := make([]*File, 0, len(startFiles)+len(targetFiles))
		inputs = append(inputs, startFiles...)
		inputs = append(inputs, targetFiles...)
		plans = append(plans, &PlanIR{
			Kind:          PlanCompact,
			TargetLevel:   fc.TargetLevel,
			CompactInputs: inputs,
		})
	}

	return plans
}
