package compactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileRange(path string, min, max int64) *File {
	return &File{Path: path, MinTime: min, MaxTime: max}
}

func TestDivideInitial_BranchNonOverlap(t *testing.T) {
	files := []*File{
		fileRange("f1", 0, 10),
		fileRange("f2", 5, 20),
		fileRange("f3", 25, 30),
		fileRange("f4", 40, 50),
	}

	divide := NewDivideInitial()
	cfg := DefaultEngineConfig()
	branches := divide.Divide(files, cfg)

	require.Len(t, branches, 3)

	branchContaining := func(path string) Branch {
		for _, b := range branches {
			for _, f := range b.Files {
				if f.Path == path {
					return b
				}
			}
		}
		t.Fatalf("file %s not found in any branch", path)
		return Branch{}
	}

	b1 := branchContaining("f1")
	b2 := branchContaining("f2")
	assert.ElementsMatch(t, pathsOf(b1.Files), pathsOf(b2.Files), "f1 and f2 overlap and must co-locate")

	b3 := branchContaining("f3")
	assert.NotEqual(t, pathsOf(b1.Files), pathsOf(b3.Files), "f3 does not overlap f1/f2")

	b4 := branchContaining("f4")
	assert.NotEqual(t, pathsOf(b3.Files), pathsOf(b4.Files))

	seen := make(map[string]bool)
	for _, b := range branches {
		for _, f := range b.Files {
			assert.False(t, seen[f.Path], "file %s appeared in more than one branch", f.Path)
			seen[f.Path] = true
		}
	}
}

func TestDivideInitial_CapsBranchSize(t *testing.T) {
	var files []*File
	for i := 0; i < 10; i++ {
		files = append(files, fileRange("f", int64(i), int64(i)))
	}

	cfg := DefaultEngineConfig()
	cfg.MaxFilesPerPlan = 3

	branches := NewDivideInitial().Divide(files, cfg)
	for _, b := range branches {
		assert.LessOrEqual(t, len(b.Files), 3)
	}

	total := 0
	for _, b := range branches {
		total += len(b.Files)
	}
	assert.Equal(t, 10, total)
}

func pathsOf(files []*File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
