package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func levelFile(path string, level Level, min, max, size int64) *File {
	return &File{Path: path, CompactionLevel: level, MinTime: min, MaxTime: max, FileSizeBytes: size}
}

func TestFileClassifier_UpgradeNonOverlapping(t *testing.T) {
	cfg := DefaultEngineConfig()
	big := levelFile("big", LevelL0, 0, 10, cfg.MaxDesiredFileSizeBytes)

	round := &RoundInfo{StartLevel: LevelL0, TargetLevel: LevelL1}
	fc := NewFileClassifier().Classify(round, Branch{Files: []*File{big}}, cfg)

	assert.Equal(t, []*File{big}, fc.ProgressFiles.Upgrade)
	assert.Empty(t, fc.ProgressFiles.SplitOrCompact.StartLevelFiles)
}

func TestFileClassifier_CompactsOverlappingStartAndTarget(t *testing.T) {
	cfg := DefaultEngineConfig()
	l0 := levelFile("l0", LevelL0, 0, 10, 100)
	l1 := levelFile("l1", LevelL1, 5, 15, 100)

	round := &RoundInfo{StartLevel: LevelL0, TargetLevel: LevelL1}
	fc := NewFileClassifier().Classify(round, Branch{Files: []*File{l0, l1}}, cfg)

	assert.Contains(t, fc.ProgressFiles.SplitOrCompact.StartLevelFiles, l0)
	assert.Contains(t, fc.ProgressFiles.SplitOrCompact.TargetLevelFiles, l1)
	assert.Empty(t, fc.ProgressFiles.Upgrade)
}

func TestFileClassifier_SplitsWhenOverlappingMultipleTargets(t *testing.T) {
	cfg := DefaultEngineConfig()
	l0 := levelFile("l0", LevelL0, 0, 30, 100)
	l1a := levelFile("l1a", LevelL1, 0, 10, 100)
	l1b := levelFile("l1b", LevelL1, 20, 30, 100)

	round := &RoundInfo{StartLevel: LevelL0, TargetLevel: LevelL1}
	fc := NewFileClassifier().Classify(round, Branch{Files: []*File{l0, l1a, l1b}}, cfg)

	if assert.Len(t, fc.ProgressFiles.SplitOrCompact.SplitInputs, 1) {
		split := fc.ProgressFiles.SplitOrCompact.SplitInputs[0]
		assert.Equal(t, l0, split.File)
		assert.Equal(t, []int64{0, 20}, split.SplitTimes)
	}
}

func TestFileClassifier_KeepsFilesAboveTargetLevel(t *testing.T) {
	cfg := DefaultEngineConfig()
	l2 := levelFile("l2", LevelL2, 0, 10, 100)
	l0 := levelFile("l0", LevelL0, 100, 110, 100)

	round := &RoundInfo{StartLevel: LevelL0, TargetLevel: LevelL1}
	fc := NewFileClassifier().Classify(round, Branch{Files: []*File{l2, l0}}, cfg)

	assert.Contains(t, fc.FilesToKeep, l2)
}

func TestFileClassification_IsEmpty(t *testing.T) {
	fc := &FileClassification{}
	assert.True(t, fc.IsEmpty())

	fc.ProgressFiles.Upgrade = append(fc.ProgressFiles.Upgrade, &File{})
	assert.False(t, fc.IsEmpty())
}
