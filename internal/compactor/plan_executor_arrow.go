package compactor

import (
	"context"
	"fmt"

	"storage-engine/internal/storage"
	"storage-engine/internal/storage/block"
	"storage-engine/internal/storage/parquet"
	"storage-engine/internal/schema"
)

// ArrowPlanRunner is the in-process PhysicalPlanRunner: it reads and
// writes parquet directly through the existing Arrow-backed
// storage/parquet package rather than delegating over a network
// boundary (compare plan_executor_grpc.go, used when compute runs in a
// separate process). It is the runner wired by default in
// cmd/compactor-worker.
type ArrowPlanRunner struct {
	staging block.Storage
	writer  *parquet.Writer
	reader  *parquet.Reader
}

// NewArrowPlanRunner constructs an ArrowPlanRunner over staging (the
// scratchpad's backing storage) using tableSchema to interpret and
// produce parquet files.
func NewArrowPlanRunner(staging block.Storage, tableSchema *schema.Schema, cfg parquet.Config) (*ArrowPlanRunner, error) {
	writer, err := parquet.NewWriter(staging, tableSchema, cfg)
	if err != nil {
		return nil, fmt.Errorf("arrow plan runner: %w", err)
	}
	reader, err := parquet.NewReader(staging, tableSchema)
	if err != nil {
		return nil, fmt.Errorf("arrow plan runner: %w", err)
	}
	return &ArrowPlanRunner{staging: staging, writer: writer, reader: reader}, nil
}

// RunPlan implements PhysicalPlanRunner.
func (r *ArrowPlanRunner) RunPlan(ctx context.Context, plan *PlanIR, info *PartitionInfo, stagedInputPaths, outputPaths []string) ([]*FileParams, error) {
	switch plan.Kind {
	case PlanCompact:
		return r.runCompact(ctx, plan, stagedInputPaths, outputPaths)
	case PlanSplit:
		return r.runSplit(ctx, plan, stagedInputPaths, outputPaths)
	default:
		return nil, fmt.Errorf("arrow plan runner: plan kind %d has no physical realization", plan.Kind)
	}
}

func (r *ArrowPlanRunner) runCompact(ctx context.Context, plan *PlanIR, stagedInputPaths, outputPaths []string) ([]*FileParams, error) {
	if len(outputPaths) != 1 {
		return nil, fmt.Errorf("compact plan must have exactly one output, got %d", len(outputPaths))
	}

	meta, err := r.writer.CompactFiles(ctx, stagedInputPaths, outputPaths[0])
	if err != nil {
		return nil, fmt.Errorf("compact files: %w", err)
	}

	minTime, maxTime := timeRangeOf(plan.CompactInputs)
	return []*FileParams{{
		CompactionLevel: plan.TargetLevel,
		MinTime:         minTime,
		MaxTime:         maxTime,
		FileSizeBytes:   meta.CompressedSize,
		RowCount:        meta.RecordCount,
	}}, nil
}

func (r *ArrowPlanRunner) runSplit(ctx context.Context, plan *PlanIR, stagedInputPaths, outputPaths []string) ([]*FileParams, error) {
	if len(stagedInputPaths) != 1 {
		return nil, fmt.Errorf("split plan must have exactly one input, got %d", len(stagedInputPaths))
	}
	if len(outputPaths) != len(plan.SplitTimes)+1 {
		return nil, fmt.Errorf("split plan expects %d outputs, got %d", len(plan.SplitTimes)+1, len(outputPaths))
	}

	records, err := r.reader.ReadAllRecords(ctx, stagedInputPaths[0])
	if err != nil {
		return nil, fmt.Errorf("read split input: %w", err)
	}

	buckets := bucketByTime(records, plan.SplitTimes)

	params := make([]*FileParams, 0, len(outputPaths))
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		meta, err := r.writer.WriteRecords(ctx, outputPaths[i], bucket)
		if err != nil {
			return nil, fmt.Errorf("write split output %d: %w", i, err)
		}
		minTime, maxTime := timeRangeOfRecords(bucket)
		params = append(params, &FileParams{
			CompactionLevel: plan.TargetLevel,
			MinTime:         minTime,
			MaxTime:         maxTime,
			FileSizeBytes:   meta.CompressedSize,
			RowCount:        meta.RecordCount,
		})
	}

	return params, nil
}

// bucketByTime partitions records into len(splitTimes)+1 buckets using
// splitTimes (sorted ascending) as boundaries: bucket i holds records
// with timestamp in [splitTimes[i-1], splitTimes[i]).
func bucketByTime(records []*storage.Record, splitTimes []int64) [][]*storage.Record {
	buckets := make([][]*storage.Record, len(splitTimes)+1)
	for _, rec := range records {
		ts := rec.Timestamp.Unix()
		idx := 0
		for idx < len(splitTimes) && ts >= splitTimes[idx] {
			idx++
		}
		buckets[idx] = append(buckets[idx], rec)
	}
	return buckets
}

func timeRangeOf(files []*File) (int64, int64) {
	if len(files) == 0 {
		return 0, 0
	}
	min, max := files[0].MinTime, files[0].MaxTime
	for _, f := range files[1:] {
		if f.MinTime < min {
			min = f.MinTime
		}
		if f.MaxTime > max {
			max = f.MaxTime
		}
	}
	return min, max
}

func timeRangeOfRecords(records []*storage.Record) (int64, int64) {
	if len(records) == 0 {
		return 0, 0
	}
	min, max := records[0].Timestamp.Unix(), records[0].Timestamp.Unix()
	for _, r := range records[1:] {
		ts := r.Timestamp.Unix()
		if ts < min {
			min = ts
		}
		if ts > max {
			max = ts
		}
	}
	return min, max
}
