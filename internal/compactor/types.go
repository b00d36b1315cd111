// Package compactor implements the partition compaction engine: it
// rewrites a partition's small, time-overlapping level-0 files into a
// smaller set of larger, non-overlapping files at higher compaction
// levels, while preserving at-exactly-once semantics against the
// catalog of record.
//
// The engine does not decide which partitions to compact (it consumes a
// stream produced by an external source), does not execute queries, and
// does not own the durable catalog or object store — those are
// collaborator interfaces supplied by the caller (see catalog_adapter.go,
// plan_executor_arrow.go and scratchpad.go for the production bindings
// used elsewhere in this repository).
package compactor

import (
	"fmt"
	"time"

	"storage-engine/internal/catalog"
)

// PartitionID is the opaque numeric identity of a partition.
type PartitionID = catalog.PartitionID

// Level is a compaction level. Levels are monotonically increasing:
// higher means fewer, larger, more consolidated files. A File's level
// may only ever move from L0 to L1 to L2, never backwards.
type Level int

const (
	LevelL0 Level = iota
	LevelL1
	LevelL2
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelL0:
		return "L0"
	case LevelL1:
		return "L1"
	case LevelL2:
		return "L2"
	default:
		return "unknown"
	}
}

// Next returns the level immediately above l. Callers must not call Next
// on LevelL2; the classifier never produces a target level beyond L2.
func (l Level) Next() Level {
	return l + 1
}

// File is a durable artifact tracked by the catalog. Files are immutable
// once created: only Deleted and CompactionLevel may change after
// creation.
type File struct {
	Path              string    `json:"path"`
	PartitionID       PartitionID `json:"partition_id"`
	ObjectStoreUUID   string    `json:"object_store_uuid"`
	CompactionLevel   Level     `json:"compaction_level"`
	MinTime           int64     `json:"min_time"`
	MaxTime           int64     `json:"max_time"`
	FileSizeBytes     int64     `json:"file_size_bytes"`
	RowCount          int64     `json:"row_count"`
	ColumnSet         []string  `json:"column_set"`
	MaxSequenceNumber int64     `json:"max_sequence_number"`
	CreatedAt         time.Time `json:"created_at"`
	Deleted           bool      `json:"deleted"`
}

// Overlaps reports whether f's time range intersects other's. Ranges are
// treated as closed intervals, matching the catalog's [min_time, max_time]
// semantics.
func (f *File) Overlaps(other *File) bool {
	return f.MinTime <= other.MaxTime && other.MinTime <= f.MaxTime
}

// Clone returns a deep copy of the file.
func (f *File) Clone() *File {
	clone := *f
	if f.ColumnSet != nil {
		clone.ColumnSet = make([]string, len(f.ColumnSet))
		copy(clone.ColumnSet, f.ColumnSet)
	}
	return &clone
}

// Fingerprint returns the (path, object_store_uuid) pair used for
// optimistic concurrency detection.
func (f *File) Fingerprint() catalog.FileFingerprint {
	return catalog.FileFingerprint{Path: f.Path, ObjectStoreUUID: f.ObjectStoreUUID}
}

// FileParams is the pre-commit shape of a File: everything needed to
// create a catalog entry except the catalog-assigned identity.
type FileParams struct {
	PartitionID       PartitionID
	ObjectStoreUUID   string
	CompactionLevel   Level
	MinTime           int64
	MaxTime           int64
	FileSizeBytes     int64
	RowCount          int64
	ColumnSet         []string
	MaxSequenceNumber int64
}

// Validate checks that a FileParams value is well-formed before it is
// handed to the catalog mutator.
func (p *FileParams) Validate() error {
	if p.ObjectStoreUUID == "" {
		return fmt.Errorf("file params: object store uuid is required")
	}
	if p.MinTime > p.MaxTime {
		return fmt.Errorf("file params: min_time %d is after max_time %d", p.MinTime, p.MaxTime)
	}
	if p.FileSizeBytes < 0 {
		return fmt.Errorf("file params: negative file size")
	}
	return nil
}

// SortKeyState mirrors catalog.SortKeyState; re-exported so compactor
// code never has to import catalog just to read a sort key.
type SortKeyState = catalog.SortKeyState

// PartitionInfo is the per-partition metadata needed to plan a round. It
// is immutable for the duration of one compaction attempt.
type PartitionInfo struct {
	PartitionID  PartitionID
	NamespaceID  string
	TableID      string
	PartitionKey string
	SortKey      SortKeyState
	ColumnCount  int
}

// RoundInfo describes the work to do in one round: which level to read
// from, which level to write to, and the budget for that round.
type RoundInfo struct {
	StartLevel      Level
	TargetLevel     Level
	MaxFilesPerPlan int
	SizeBudgetBytes int64
	// NeedsRound is false once no level has files worth compacting; the
	// driver's outer loop stops when this is false.
	NeedsRound bool
}

// SavedParquetFileState is a fingerprint of the set of files a branch
// observed when it started, used to detect a concurrent mutator at
// commit time.
type SavedParquetFileState struct {
	Fingerprints []catalog.FileFingerprint
}

// NewSavedParquetFileState snapshots the fingerprints of files.
func NewSavedParquetFileState(files []*File) SavedParquetFileState {
	fps := make([]catalog.FileFingerprint, len(files))
	for i, f := range files {
		fps[i] = f.Fingerprint()
	}
	return SavedParquetFileState{Fingerprints: fps}
}

// DefaultConfig holds the tunables that drive RoundInfoSource,
// FileClassifier and RoundSplit. Values are grounded in the spec's
// stated constants (SINGLE_THREADED_COLUMN_COUNT, the 200-file round
// cap) plus reasonable defaults for the rest.
type DefaultConfig struct {
	// MaxFilesPerPartitionPerRound bounds how many files RoundSplit will
	// consider in one round before carrying the remainder to "later".
	MaxFilesPerPartitionPerRound int
	// MaxFilesPerPlan bounds how many files DivideInitial puts in one
	// branch.
	MaxFilesPerPlan int
	// MaxDesiredFileSizeBytes is the "large enough" threshold used by the
	// classifier's upgrade decision.
	MaxDesiredFileSizeBytes int64
	// PercentageMaxFileSize, in [0,100], is the fraction of
	// MaxDesiredFileSizeBytes above which RoundInfoSource counts a file
	// as large enough when deciding whether a round promotes to the next
	// level.
	PercentageMaxFileSize int
	// SingleThreadedColumnCount is the column count at or above which a
	// plan gets every permit (SINGLE_THREADED_COLUMN_COUNT in the spec).
	SingleThreadedColumnCount int
}

// DefaultEngineConfig returns the engine's default tunables.
func DefaultEngineConfig() DefaultConfig {
	return DefaultConfig{
		MaxFilesPerPartitionPerRound: 200,
		MaxFilesPerPlan:              20,
		MaxDesiredFileSizeBytes:      100 * 1024 * 1024, // 100 MiB
		PercentageMaxFileSize:        30,
		SingleThreadedColumnCount:    100,
	}
}
