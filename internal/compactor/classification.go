package compactor

// FileClassification is the File Classifier's output for one branch: the
// level the branch is working towards, the files that need no action
// this round, and the files that make progress towards that level.
//
// Invariant: a file appears in at most one of Keep,
// ProgressFiles.Upgrade, ProgressFiles.SplitOrCompact.Files.
type FileClassification struct {
	TargetLevel    Level
	FilesToKeep    []*File
	ProgressFiles  FilesForProgress
}

// FilesForProgress splits the files making progress this round into the
// two disjoint mechanisms available: a cheap in-place level bump, or an
// actual split/compact rewrite.
type FilesForProgress struct {
	Upgrade        []*File
	SplitOrCompact FilesToSplitOrCompact
}

// FilesToSplitOrCompact is the raw material the IR Planner turns into
// one or more PlanIR values.
type FilesToSplitOrCompact struct {
	// StartLevelFiles are files at StartLevel and TargetLevelFiles the
	// TargetLevel files they overlap with, destined for a Compact plan.
	StartLevelFiles  []*File
	TargetLevelFiles []*File
	// SplitInputs are StartLevel files that overlap more than one
	// TargetLevel file and so must be split along those boundaries
	// before they can be compacted.
	SplitInputs []SplitInput
}

// SplitInput names one file and the time boundaries it must be split on.
type SplitInput struct {
	File       *File
	SplitTimes []int64
}

// IsEmpty reports whether this classification makes no progress at all,
// which is how the driver and the Post-Classification Filter recognize
// that a round has nothing left to do.
func (fc *FileClassification) IsEmpty() bool {
	return len(fc.ProgressFiles.Upgrade) == 0 &&
		len(fc.ProgressFiles.SplitOrCompact.StartLevelFiles) == 0 &&
		len(fc.ProgressFiles.SplitOrCompact.SplitInputs) == 0
}

// PlanKind tags the closed set of PlanIR variants.
type PlanKind int

const (
	PlanNone PlanKind = iota
	PlanCompact
	PlanSplit
)

// PlanIR is the abstract execution plan produced by the IR Planner: a
// Compact of N inputs into one output, a Split of one input along time
// boundaries into N+1 outputs, or None (no work). Exactly one of the
// payload fields is meaningful, selected by Kind; callers should switch
// exhaustively on Kind rather than inspecting the payload fields
// directly.
type PlanIR struct {
	Kind        PlanKind
	TargetLevel Level

	// Compact
	CompactInputs []*File

	// Split
	SplitInput      *File
	SplitTimes      []int64
}

// NOutputFiles returns how many output files this plan will produce.
// Every non-None plan produces at least one output file.
func (p *PlanIR) NOutputFiles() int {
	switch p.Kind {
	case PlanCompact:
		return 1
	case PlanSplit:
		return len(p.SplitTimes) + 1
	default:
		return 0
	}
}

// Inputs returns the files this plan reads from, used to stage the
// scratchpad and to compute the commit's delete-set.
func (p *PlanIR) Inputs() []*File {
	switch p.Kind {
	case PlanCompact:
		return p.CompactInputs
	case PlanSplit:
		return []*File{p.SplitInput}
	default:
		return nil
	}
}
