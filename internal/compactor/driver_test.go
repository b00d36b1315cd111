package compactor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScratchpad is an in-memory Scratchpad that never touches real
// storage, used to exercise the driver's stage/publish/clean sequencing
// without the object-store dependency.
type fakeScratchpad struct {
	staged map[string]bool
}

func newFakeScratchpad() *fakeScratchpad {
	return &fakeScratchpad{staged: make(map[string]bool)}
}

func (f *fakeScratchpad) LoadToScratchpad(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		staged := "staged/" + p
		f.staged[staged] = true
		out[i] = staged
	}
	return out, nil
}

func (f *fakeScratchpad) MakePublic(ctx context.Context, stagingPaths []string, durablePaths []string) error {
	return nil
}

func (f *fakeScratchpad) CleanFromScratchpad(ctx context.Context, paths []string) error {
	for _, p := range paths {
		delete(f.staged, p)
	}
	return nil
}

func (f *fakeScratchpad) Clean(ctx context.Context) error {
	f.staged = make(map[string]bool)
	return nil
}

// fakePlanRunner merges every input into a single output whose time
// range spans its inputs, standing in for the physical compute
// collaborator.
type fakePlanRunner struct{}

func (fakePlanRunner) RunPlan(ctx context.Context, plan *PlanIR, info *PartitionInfo, stagedInputPaths, outputPaths []string) ([]*FileParams, error) {
	switch plan.Kind {
	case PlanCompact:
		min, max := timeRangeOf(plan.CompactInputs)
		return []*FileParams{{CompactionLevel: plan.TargetLevel, MinTime: min, MaxTime: max, FileSizeBytes: 10, RowCount: 10}}, nil
	default:
		return nil, fmt.Errorf("fakePlanRunner: unsupported plan kind %d", plan.Kind)
	}
}

// fakeCatalogClient records every commit it receives and assigns a
// deterministic path to each created file.
type fakeCatalogClient struct {
	commits []*CommitRequest
}

func (f *fakeCatalogClient) Commit(ctx context.Context, req *CommitRequest) (*CommitResult, error) {
	f.commits = append(f.commits, req)
	paths := make([]string, len(req.CreateFiles))
	for i := range req.CreateFiles {
		paths[i] = fmt.Sprintf("created-%d-%d", len(f.commits), i)
	}
	return &CommitResult{CreatedPaths: paths}, nil
}

func newTestComponents(t *testing.T, partitionsSource PartitionsSource, filesSource *MockPartitionFilesSource, infoSource *MockPartitionInfoSource, catalogClient *fakeCatalogClient, sink PartitionDoneSink) *Components {
	t.Helper()
	return &Components{
		PartitionsSource:         partitionsSource,
		PartitionInfoSource:      infoSource,
		PartitionFilesSource:     filesSource,
		PartitionFilter:          NewHasWorkPartitionFilter(),
		RoundInfoSource:          NewRoundInfoSource(),
		RoundSplit:               NewRoundSplit(),
		DivideInitial:            NewDivideInitial(),
		FileClassifier:           NewFileClassifier(),
		PostClassificationFilter: NewNotEmptyClassificationFilter(),
		IRPlanner:                NewIRPlanner(),
		PlanRunner:               fakePlanRunner{},
		CatalogClient:            catalogClient,
		PartitionDoneSink:        sink,
		ScratchpadFactory:        func() Scratchpad { return newFakeScratchpad() },
		Config:                   DefaultEngineConfig(),
	}
}

func TestDriver_CompactsOverlappingFilesAndCommitsOnce(t *testing.T) {
	filesSource := NewMockPartitionFilesSource()
	filesSource.Set(1, []*File{
		{Path: "a", PartitionID: 1, CompactionLevel: LevelL0, MinTime: 0, MaxTime: 10, FileSizeBytes: 10},
		{Path: "b", PartitionID: 1, CompactionLevel: LevelL0, MinTime: 5, MaxTime: 15, FileSizeBytes: 10},
	})

	infoSource := NewMockPartitionInfoSource()
	infoSource.Set(&PartitionInfo{PartitionID: 1, ColumnCount: 10})

	catalogClient := &fakeCatalogClient{}
	sink := NewMetricsDoneSink(nil)

	components := newTestComponents(t, NewMockPartitionsSource([]PartitionID{1}), filesSource, infoSource, catalogClient, sink)
	driver := NewDriver(components, NewLimiter(10))

	err := driver.Compact(context.Background(), 2, time.Second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), sink.Counts()["ok"])
	require.Len(t, catalogClient.commits, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, catalogClient.commits[0].DeleteFiles)
}

func TestDriver_SkipsPartitionWithOneFile(t *testing.T) {
	filesSource := NewMockPartitionFilesSource()
	filesSource.Set(2, []*File{
		{Path: "only", PartitionID: 2, CompactionLevel: LevelL0, MinTime: 0, MaxTime: 10},
	})

	infoSource := NewMockPartitionInfoSource()
	infoSource.Set(&PartitionInfo{PartitionID: 2, ColumnCount: 10})

	catalogClient := &fakeCatalogClient{}
	sink := NewMetricsDoneSink(nil)

	components := newTestComponents(t, NewMockPartitionsSource([]PartitionID{2}), filesSource, infoSource, catalogClient, sink)
	driver := NewDriver(components, NewLimiter(10))

	err := driver.Compact(context.Background(), 1, time.Second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), sink.Counts()["ok"])
	assert.Empty(t, catalogClient.commits)
}
