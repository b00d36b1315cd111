package compactor

import "sort"

// RoundSplit caps the number of files a round will consider so a
// pathological partition (tens of thousands of tiny files) does not
// force unbounded memory use in one pass. Files beyond the cap are
// returned as "later" and picked up by a subsequent round.
type RoundSplit interface {
	Split(files []*File, cfg DefaultConfig) (thisRound, later []*File)
}

type defaultRoundSplit struct{}

// NewRoundSplit returns the engine's default RoundSplit.
func NewRoundSplit() RoundSplit { return defaultRoundSplit{} }

// Split implements RoundSplit. Files are ordered by MinTime before
// truncation so that, round over round, the engine makes steady
// progress through the partition's time range rather than always
// reconsidering the same arbitrary subset.
func (defaultRoundSplit) Split(files []*File, cfg DefaultConfig) ([]*File, []*File) {
	if len(files) <= cfg.MaxFilesPerPartitionPerRound {
		return files, nil
	}

	ordered := make([]*File, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].MinTime != ordered[j].MinTime {
			return ordered[i].MinTime < ordered[j].MinTime
		}
		return ordered[i].Path < ordered[j].Path
	})

	return ordered[:cfg.MaxFilesPerPartitionPerRound], ordered[cfg.MaxFilesPerPartitionPerRound:]
}
