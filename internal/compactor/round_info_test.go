package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundInfoSource_NoFilesNeedsNoRound(t *testing.T) {
	cfg := DefaultEngineConfig()
	round := NewRoundInfoSource().PickRound(&PartitionInfo{}, nil, cfg)
	assert.False(t, round.NeedsRound)
}

func TestRoundInfoSource_L0FilesCompactAtL0(t *testing.T) {
	cfg := DefaultEngineConfig()
	files := []*File{
		levelFile("a", LevelL0, 0, 10, 1024),
		levelFile("b", LevelL0, 10, 20, 1024),
	}
	round := NewRoundInfoSource().PickRound(&PartitionInfo{}, files, cfg)

	assert.True(t, round.NeedsRound)
	assert.Equal(t, LevelL0, round.StartLevel)
	assert.Equal(t, LevelL0, round.TargetLevel)
}

func TestRoundInfoSource_LargeL0FilesPromoteToL1(t *testing.T) {
	cfg := DefaultEngineConfig()
	files := []*File{
		levelFile("a", LevelL0, 0, 10, cfg.MaxDesiredFileSizeBytes),
		levelFile("b", LevelL0, 10, 20, cfg.MaxDesiredFileSizeBytes),
	}
	round := NewRoundInfoSource().PickRound(&PartitionInfo{}, files, cfg)

	assert.Equal(t, LevelL0, round.StartLevel)
	assert.Equal(t, LevelL1, round.TargetLevel)
}

func TestRoundInfoSource_FallsBackToL1WhenNoL0(t *testing.T) {
	cfg := DefaultEngineConfig()
	files := []*File{
		levelFile("a", LevelL1, 0, 10, 1024),
	}
	round := NewRoundInfoSource().PickRound(&PartitionInfo{}, files, cfg)

	assert.True(t, round.NeedsRound)
	assert.Equal(t, LevelL1, round.StartLevel)
}
