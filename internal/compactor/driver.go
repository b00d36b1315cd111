package compactor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// errBranchRejected signals that PostClassificationFilter rejected a
// branch's classification. Per the engine's round x branch contract,
// a rejected branch means there is nothing more to do for this
// partition this invocation: tryCompactPartition stops immediately
// rather than compacting any remaining branches in this round.
var errBranchRejected = errors.New("compactor: branch rejected by post-classification filter")

// Components bundles every collaborator the Driver needs for one
// compaction run. Each field is a capability interface with a single
// operation, composed rather than inherited — the same "polymorphism
// over strategy" shape the rest of the engine's components follow.
type Components struct {
	PartitionsSource         PartitionsSource
	PartitionInfoSource      PartitionInfoSource
	PartitionFilesSource     PartitionFilesSource
	PartitionFilter          PartitionFilter
	RoundInfoSource          RoundInfoSource
	RoundSplit               RoundSplit
	DivideInitial            DivideInitial
	FileClassifier           FileClassifier
	PostClassificationFilter PostClassificationFilter
	IRPlanner                IRPlanner
	PlanRunner               PhysicalPlanRunner
	CatalogClient            CatalogClient
	PartitionDoneSink        PartitionDoneSink
	ScratchpadFactory        func() Scratchpad
	Config                   DefaultConfig
}

// Driver runs the compaction engine over a PartitionsSource.
type Driver struct {
	components *Components
	limiter    *Limiter
}

// NewDriver constructs a Driver. limiter is the process-wide weighted
// semaphore shared by every partition's plan executor.
func NewDriver(components *Components, limiter *Limiter) *Driver {
	return &Driver{components: components, limiter: limiter}
}

// Compact fetches the partition stream once and processes up to
// partitionConcurrency partitions concurrently, unordered, each under
// partitionTimeout. It returns once the stream is exhausted and every
// partition has reported to the Done Sink.
func (d *Driver) Compact(ctx context.Context, partitionConcurrency int, partitionTimeout time.Duration) error {
	if partitionConcurrency < 1 {
		partitionConcurrency = 1
	}

	partitions, err := d.components.PartitionsSource.Fetch(ctx)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, partitionConcurrency)
	var wg sync.WaitGroup

	for _, partitionID := range partitions {
		partitionID := partitionID
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			d.compactPartition(ctx, partitionID, partitionTimeout)
		}()
	}

	wg.Wait()
	return nil
}

// compactPartition runs tryCompactPartition under a progress-aware
// timeout, classifies the outcome, records it to the Done Sink exactly
// once, and cleans the scratchpad unconditionally.
func (d *Driver) compactPartition(ctx context.Context, partitionID PartitionID, partitionTimeout time.Duration) {
	log.Printf("🗜️  compacting partition %d", partitionID)

	scratchpad := d.components.ScratchpadFactory()

	outcome, err := RunWithProgressAwareTimeout(ctx, partitionTimeout, func(opCtx context.Context, progress *ProgressSignal) error {
		return d.tryCompactPartition(opCtx, partitionID, scratchpad, progress)
	})

	var result error
	switch outcome {
	case Completed:
		result = err
	case SomeWorkTryAgain:
		result = nil
	case NoWorkTimeOutError:
		result = &TimeoutError{PartitionID: partitionID}
	}

	d.components.PartitionDoneSink.Record(ctx, partitionID, result)

	if cleanErr := scratchpad.Clean(ctx); cleanErr != nil {
		log.Printf("🗜️  partition %d: scratchpad clean failed: %v", partitionID, cleanErr)
	}

	log.Printf("🗜️  compacted partition %d", partitionID)
}

// tryCompactPartition is the two-level round×branch loop: each round
// picks a (start_level, target_level) pair and a bounded slice of
// files, divides that slice into time-disjoint branches, and compacts
// each branch in turn. A round with nothing left to classify ends the
// loop for this partition.
func (d *Driver) tryCompactPartition(ctx context.Context, partitionID PartitionID, scratchpad Scratchpad, progress *ProgressSignal) error {
	c := d.components

	files, err := c.PartitionFilesSource.FetchFiles(ctx, partitionID)
	if err != nil {
		return err
	}
	info, err := c.PartitionInfoSource.FetchPartitionInfo(ctx, partitionID)
	if err != nil {
		return err
	}

	maxRounds := len(files) + 1
	for round := 0; round < maxRounds; round++ {
		if !c.PartitionFilter.Apply(info, files) {
			return nil
		}

		roundInfo := c.RoundInfoSource.PickRound(info, files, c.Config)
		if !roundInfo.NeedsRound {
			return nil
		}

		thisRound, later := c.RoundSplit.Split(files, c.Config)
		branches := c.DivideInitial.Divide(thisRound, c.Config)

		anyProgress := false
		nextFiles := append([]*File(nil), later...)

		for _, branch := range branches {
			remaining, madeProgress, err := d.compactBranch(ctx, partitionID, info, roundInfo, branch, scratchpad)
			if err != nil {
				if errors.Is(err, errBranchRejected) {
					return nil
				}
				return err
			}
			nextFiles = append(nextFiles, remaining...)
			if madeProgress {
				anyProgress = true
			}
		}

		if anyProgress {
			if sendErr := progress.Send(); sendErr != nil {
				return sendErr
			}
		}

		files = nextFiles
	}

	return nil
}

// compactBranch classifies one branch, plans and executes any resulting
// work, and commits the results. It returns the branch's surviving
// files (kept files plus newly created outputs), or errBranchRejected
// if PostClassificationFilter rejected the branch's classification —
// the caller treats that as "nothing more to do this partition", not
// as "skip this branch and keep going".
func (d *Driver) compactBranch(ctx context.Context, partitionID PartitionID, info *PartitionInfo, roundInfo *RoundInfo, branch Branch, scratchpad Scratchpad) ([]*File, bool, error) {
	c := d.components

	savedState := NewSavedParquetFileState(branch.Files)

	fc := c.FileClassifier.Classify(roundInfo, branch, c.Config)
	if !c.PostClassificationFilter.Apply(fc) {
		return nil, false, errBranchRejected
	}

	plans := c.IRPlanner.Plan(fc)

	var created []*FileParams
	if len(plans) > 0 {
		executor := d.partitionExecutor(scratchpad)
		var err error
		created, err = executor.RunPlans(ctx, plans, info)
		if err != nil {
			return nil, false, err
		}
	}

	deleteFiles := filePaths(fc.ProgressFiles.SplitOrCompact.StartLevelFiles)
	deleteFiles = append(deleteFiles, filePaths(splitInputFiles(fc.ProgressFiles.SplitOrCompact.SplitInputs))...)
	deleteFiles = append(deleteFiles, filePaths(fc.ProgressFiles.SplitOrCompact.TargetLevelFiles)...)

	upgradeFiles := filePaths(fc.ProgressFiles.Upgrade)

	commitResult, err := Commit(ctx, c.CatalogClient, &CommitRequest{
		PartitionID:   partitionID,
		DeleteFiles:   deleteFiles,
		UpgradeFiles:  upgradeFiles,
		CreateFiles:   created,
		TargetLevel:   fc.TargetLevel,
		ExpectedState: savedState,
	})
	if err != nil {
		return nil, false, &CommitError{PartitionID: partitionID, Err: err}
	}
	if commitResult.FingerprintDiff {
		log.Printf("🗜️  partition %d: fingerprint mismatch at commit, proceeding anyway", partitionID)
	}

	survivors := append([]*File(nil), fc.FilesToKeep...)
	for _, f := range fc.ProgressFiles.Upgrade {
		upgraded := f.Clone()
		upgraded.CompactionLevel = fc.TargetLevel
		survivors = append(survivors, upgraded)
	}
	for i, path := range commitResult.CreatedPaths {
		survivors = append(survivors, &File{
			Path:            path,
			PartitionID:     partitionID,
			CompactionLevel: fc.TargetLevel,
			MinTime:         created[i].MinTime,
			MaxTime:         created[i].MaxTime,
			FileSizeBytes:   created[i].FileSizeBytes,
			RowCount:        created[i].RowCount,
		})
	}

	return survivors, true, nil
}

func (d *Driver) partitionExecutor(scratchpad Scratchpad) *PlanExecutor {
	return NewPlanExecutor(scratchpad, d.limiter, d.components.PlanRunner, d.components.Config)
}

func filePaths(files []*File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func splitInputFiles(inputs []SplitInput) []*File {
	files := make([]*File, len(inputs))
	for i, s := range inputs {
		files[i] = s.File
	}
	return files
}
