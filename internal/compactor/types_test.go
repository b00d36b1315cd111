package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFile_Overlaps(t *testing.T) {
	a := &File{MinTime: 0, MaxTime: 10}
	b := &File{MinTime: 10, MaxTime: 20}
	c := &File{MinTime: 11, MaxTime: 20}

	assert.True(t, a.Overlaps(b), "closed intervals touching at a boundary overlap")
	assert.False(t, a.Overlaps(c))
}

func TestFile_Clone(t *testing.T) {
	f := &File{Path: "p", ColumnSet: []string{"a", "b"}}
	clone := f.Clone()

	clone.ColumnSet[0] = "mutated"
	assert.Equal(t, "a", f.ColumnSet[0], "clone must not share the backing array")
	assert.Equal(t, f.Path, clone.Path)
}

func TestLevel_Next(t *testing.T) {
	assert.Equal(t, LevelL1, LevelL0.Next())
	assert.Equal(t, LevelL2, LevelL1.Next())
}

func TestFileParams_Validate(t *testing.T) {
	valid := &FileParams{ObjectStoreUUID: "u", MinTime: 0, MaxTime: 10}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&FileParams{MinTime: 0, MaxTime: 10}).Validate(), "missing uuid")
	assert.Error(t, (&FileParams{ObjectStoreUUID: "u", MinTime: 10, MaxTime: 0}).Validate(), "min after max")
	assert.Error(t, (&FileParams{ObjectStoreUUID: "u", FileSizeBytes: -1}).Validate(), "negative size")
}

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.Equal(t, 200, cfg.MaxFilesPerPartitionPerRound)
	assert.Equal(t, 100, cfg.SingleThreadedColumnCount)
}
