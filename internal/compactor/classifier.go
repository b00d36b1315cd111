package compactor

// FileClassifier assigns every file in a branch to keep, upgrade or
// split_or_compact for a given (start_level, target_level) pair.
type FileClassifier interface {
	Classify(round *RoundInfo, branch Branch, cfg DefaultConfig) *FileClassification
}

type defaultFileClassifier struct{}

// NewFileClassifier returns the engine's default FileClassifier.
func NewFileClassifier() FileClassifier { return defaultFileClassifier{} }

// Classify implements FileClassifier.
//
//   - keep: files above target_level, plus target_level files that do
//     not overlap any start_level file in the branch.
//   - upgrade: start_level files that overlap nothing else in the
//     branch and meet the "large enough" threshold. A file whose size is
//     exactly at the threshold ties in favor of upgrade, since it is the
//     cheaper outcome (a label change, no rewrite).
//   - split_or_compact: everything else — start_level files overlapping
//     more than one target_level file are routed to Split; start_level
//     files overlapping exactly one target_level file (or other
//     start_level files, but no target_level split boundary) are routed
//     to Compact together with the target_level files they overlap.
func (defaultFileClassifier) Classify(round *RoundInfo, branch Branch, cfg DefaultConfig) *FileClassification {
	startLevel := round.StartLevel
	targetLevel := round.TargetLevel

	var atStart, atTarget, above []*File
	for _, f := range branch.Files {
		switch {
		case f.CompactionLevel == startLevel:
			atStart = append(atStart, f)
		case f.CompactionLevel == targetLevel && targetLevel != startLevel:
			atTarget = append(atTarget, f)
		default:
			above = append(above, f)
		}
	}

	fc := &FileClassification{TargetLevel: targetLevel}
	fc.FilesToKeep = append(fc.FilesToKeep, above...)

	threshold := cfg.MaxDesiredFileSizeBytes

	targetOverlapCount := func(f *File) []*File {
		var overlapping []*File
		for _, t := range atTarget {
			if f.Overlaps(t) {
				overlapping = append(overlapping, t)
			}
		}
		return overlapping
	}

	overlapsAnyStart := func(f *File) bool {
		for _, other := range atStart {
			if other == f {
				continue
			}
			if f.Overlaps(other) {
				return true
			}
		}
		return false
	}

	targetUsed := make(map[*File]bool)

	for _, f := range atStart {
		targetHits := targetOverlapCount(f)

		if len(targetHits) == 0 && !overlapsAnyStart(f) {
			if f.FileSizeBytes >= threshold {
				fc.ProgressFiles.Upgrade = append(fc.ProgressFiles.Upgrade, f)
				continue
			}
		}

		if len(targetHits) > 1 {
			splitTimes := targetBoundaries(targetHits)
			fc.ProgressFiles.SplitOrCompact.SplitInputs = append(fc.ProgressFiles.SplitOrCompact.SplitInputs, SplitInput{
				File:       f,
				SplitTimes: splitTimes,
			})
			for _, t := range targetHits {
				targetUsed[t] = true
			}
			continue
		}

		fc.ProgressFiles.SplitOrCompact.StartLevelFiles = append(fc.ProgressFiles.SplitOrCompact.StartLevelFiles, f)
		for _, t := range targetHits {
			targetUsed[t] = true
		}
	}

	for _, t := range atTarget {
		if targetUsed[t] {
			fc.ProgressFiles.SplitOrCompact.TargetLevelFiles = append(fc.ProgressFiles.SplitOrCompact.TargetLevelFiles, t)
		} else {
			fc.FilesToKeep = append(fc.FilesToKeep, t)
		}
	}

	return fc
}

// targetBoundaries returns the sorted, deduplicated MinTime values of
// the target-level files a splitting file overlaps, used as the split
// points. Stable (time-ascending) ordering also implements the
// equally-sized-parts tie-break: when two candidate splits would
// produce equal-sized parts, the earlier boundary sorts first and so is
// applied first.
func targetBoundaries(targets []*File) []int64 {
	times := make([]int64, 0, len(targets))
	seen := make(map[int64]bool, len(targets))
	for _, t := range targets {
		if !seen[t.MinTime] {
			seen[t.MinTime] = true
			times = append(times, t.MinTime)
		}
	}
	for i := 1; i < len(times); i++ {
		for j := i; j > 0 && times[j-1] > times[j]; j-- {
			times[j-1], times[j] = times[j], times[j-1]
		}
	}
	return times
}
