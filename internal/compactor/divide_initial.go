package compactor

import "sort"

// Branch is one independent unit of classification, planning and
// execution: a set of files whose time range does not overlap any other
// branch's, bounded by cfg.MaxFilesPerPlan.
type Branch struct {
	Files             []*File
	EstimatedSizeBytes int64
}

// DivideInitial partitions a round's file set into branches. Branches
// are independent and may be processed concurrently at the driver's
// discretion; the current driver processes them sequentially per
// partition (see driver.go).
type DivideInitial interface {
	Divide(files []*File, cfg DefaultConfig) []Branch
}

type defaultDivideInitial struct{}

// NewDivideInitial returns the engine's default DivideInitial.
func NewDivideInitial() DivideInitial { return defaultDivideInitial{} }

// Divide implements DivideInitial. Files are swept in MinTime order to
// find maximal clusters of mutually time-connected files (cluster C
// absorbs any file whose range intersects C's running [min,max]); each
// cluster becomes a branch with disjoint time range from every other
// branch. A cluster larger than cfg.MaxFilesPerPlan is chunked in
// MinTime order into multiple branches of at most that size — those
// sub-branches can overlap each other in time, which only matters if a
// later stage assumes global non-overlap across all branches of a
// round; the classifier and IR planner here only ever compare files
// within one branch, so this is safe.
func (defaultDivideInitial) Divide(files []*File, cfg DefaultConfig) []Branch {
	if len(files) == 0 {
		return nil
	}

	ordered := make([]*File, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].MinTime != ordered[j].MinTime {
			return ordered[i].MinTime < ordered[j].MinTime
		}
		return ordered[i].Path < ordered[j].Path
	})

	var clusters [][]*File
	var current []*File
	var currentMax int64

	for _, f := range ordered {
		if len(current) == 0 || f.MinTime <= currentMax {
			current = append(current, f)
			if f.MaxTime > currentMax {
				currentMax = f.MaxTime
			}
			continue
		}
		clusters = append(clusters, current)
		current = []*File{f}
		currentMax = f.MaxTime
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	maxPerPlan := cfg.MaxFilesPerPlan
	if maxPerPlan <= 0 {
		maxPerPlan = len(ordered)
	}

	var branches []Branch
	for _, cluster := range clusters {
		for start := 0; start < len(cluster); start += maxPerPlan {
			end := start + maxPerPlan
			if end > len(cluster) {
				end = len(cluster)
			}
			branches = append(branches, newBranch(cluster[start:end]))
		}
	}

	return branches
}

func newBranch(files []*File) Branch {
	var size int64
	for _, f := range files {
		size += f.FileSizeBytes
	}
	return Branch{Files: files, EstimatedSizeBytes: size}
}
