package compactor

// RoundInfoSource is a pure function of the partition's metadata and its
// current files, deciding which levels the next round should read from
// and write to.
type RoundInfoSource interface {
	PickRound(info *PartitionInfo, files []*File, cfg DefaultConfig) *RoundInfo
}

type defaultRoundInfoSource struct{}

// NewRoundInfoSource returns the engine's default RoundInfoSource.
func NewRoundInfoSource() RoundInfoSource {
	return defaultRoundInfoSource{}
}

// PickRound implements RoundInfoSource.
//
// If any L0 file exists, the round reads L0 and writes to L0 or L1
// depending on the count/size distribution of the L0 set (a lot of
// small L0 files first consolidate among themselves at L0 before ever
// being promoted). Otherwise if any L1 file exists, the round reads L1
// and writes to L1 or L2 by the same rule. Otherwise no round is
// needed: the partition is fully compacted.
func (defaultRoundInfoSource) PickRound(info *PartitionInfo, files []*File, cfg DefaultConfig) *RoundInfo {
	l0 := filesAtLevel(files, LevelL0)
	if len(l0) > 0 {
		return roundFor(LevelL0, l0, cfg)
	}

	l1 := filesAtLevel(files, LevelL1)
	if len(l1) > 0 {
		return roundFor(LevelL1, l1, cfg)
	}

	return &RoundInfo{NeedsRound: false}
}

func roundFor(startLevel Level, atLevel []*File, cfg DefaultConfig) *RoundInfo {
	target := startLevel
	if shouldPromote(atLevel, cfg) {
		target = startLevel.Next()
	}
	return &RoundInfo{
		StartLevel:      startLevel,
		TargetLevel:     target,
		MaxFilesPerPlan: cfg.MaxFilesPerPlan,
		SizeBudgetBytes: cfg.MaxDesiredFileSizeBytes,
		NeedsRound:      true,
	}
}

// shouldPromote decides whether a level's files are consolidated enough
// (few files, most near the desired size) to promote to the next level
// rather than continuing to compact within the same level.
func shouldPromote(files []*File, cfg DefaultConfig) bool {
	if len(files) == 0 {
		return false
	}

	var totalSize int64
	largeEnough := 0
	threshold := cfg.MaxDesiredFileSizeBytes * int64(cfg.PercentageMaxFileSize) / 100
	for _, f := range files {
		totalSize += f.FileSizeBytes
		if f.FileSizeBytes >= threshold {
			largeEnough++
		}
	}

	avg := totalSize / int64(len(files))
	return avg >= threshold && largeEnough*2 >= len(files)
}

func filesAtLevel(files []*File, level Level) []*File {
	var result []*File
	for _, f := range files {
		if f.CompactionLevel == level {
			result = append(result, f)
		}
	}
	return result
}
