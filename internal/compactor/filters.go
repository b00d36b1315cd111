package compactor

// PartitionFilter decides, before any round runs, whether a partition
// should be compacted at all. Returning false ends the partition's
// processing for this pass with no Commit and no error.
type PartitionFilter interface {
	Apply(info *PartitionInfo, files []*File) bool
	String() string
}

// ByIDPartitionFilter restricts compaction to an explicit allowlist of
// partition IDs, grounded directly in the original engine's
// ByIdPartitionFilter (an id-only filter applied before any file is
// even fetched). Here it is reused as a post-fetch PartitionFilter so it
// composes with the rest of the filter chain without a separate
// id-only abstraction.
type ByIDPartitionFilter struct {
	ids map[PartitionID]struct{}
}

// NewByIDPartitionFilter builds a filter admitting only ids.
func NewByIDPartitionFilter(ids []PartitionID) *ByIDPartitionFilter {
	set := make(map[PartitionID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &ByIDPartitionFilter{ids: set}
}

// Apply implements PartitionFilter.
func (f *ByIDPartitionFilter) Apply(info *PartitionInfo, files []*File) bool {
	_, ok := f.ids[info.PartitionID]
	return ok
}

func (f *ByIDPartitionFilter) String() string { return "by_id" }

// hasWorkPartitionFilter rejects a partition outright when it has fewer
// than two files: a single file needs no compaction regardless of its
// level or size.
type hasWorkPartitionFilter struct{}

// NewHasWorkPartitionFilter returns the default filter used ahead of
// every other PartitionFilter in the chain.
func NewHasWorkPartitionFilter() PartitionFilter { return hasWorkPartitionFilter{} }

func (hasWorkPartitionFilter) Apply(info *PartitionInfo, files []*File) bool {
	return len(files) >= 2
}

func (hasWorkPartitionFilter) String() string { return "has_work" }

// PostClassificationFilter runs after the File Classifier produces a
// FileClassification, deciding whether the branch it describes is worth
// planning and executing at all.
type PostClassificationFilter interface {
	Apply(fc *FileClassification) bool
	String() string
}

// notEmptyClassificationFilter rejects a classification that makes no
// progress (FileClassification.IsEmpty), which is how a round recognizes
// it has nothing left to do.
type notEmptyClassificationFilter struct{}

// NewNotEmptyClassificationFilter returns the default
// PostClassificationFilter.
func NewNotEmptyClassificationFilter() PostClassificationFilter {
	return notEmptyClassificationFilter{}
}

func (notEmptyClassificationFilter) Apply(fc *FileClassification) bool {
	return !fc.IsEmpty()
}

func (notEmptyClassificationFilter) String() string { return "not_empty" }
