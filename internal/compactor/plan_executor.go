package compactor

import (
	"context"

	"github.com/google/uuid"
)

// PhysicalPlanRunner is the external collaborator that turns a PlanIR
// into actual bytes: given the partition's metadata, a plan and its
// staged input paths, it streams the inputs, performs the split or
// merge, and writes one parquet file per output path, reporting the
// FileParams of what it wrote. Everything about row-level processing is
// out of this package's scope beyond this contract.
type PhysicalPlanRunner interface {
	RunPlan(ctx context.Context, plan *PlanIR, info *PartitionInfo, stagedInputPaths []string, outputPaths []string) ([]*FileParams, error)
}

// PlanExecutor runs PlanIR values end to end: stage inputs, acquire a
// permit sized to the partition's schema width, run the physical
// compute, release the permit, then publish outputs to durable storage.
type PlanExecutor struct {
	scratchpad Scratchpad
	limiter    *Limiter
	runner     PhysicalPlanRunner
	cfg        DefaultConfig
}

// NewPlanExecutor constructs a PlanExecutor.
func NewPlanExecutor(scratchpad Scratchpad, limiter *Limiter, runner PhysicalPlanRunner, cfg DefaultConfig) *PlanExecutor {
	return &PlanExecutor{scratchpad: scratchpad, limiter: limiter, runner: runner, cfg: cfg}
}

// Execute runs a single plan and returns the FileParams of its output
// files, staged under fresh durable paths ready to hand to Commit.
//
// Permit acquisition wraps both planning and execution because the
// physical runner may pre-allocate based on the plan before it reads a
// single row; the permit is released the instant execution finishes,
// strictly before the publish step, so I/O to durable storage never
// holds a compute slot.
func (e *PlanExecutor) Execute(ctx context.Context, plan *PlanIR, info *PartitionInfo) ([]*FileParams, error) {
	inputs := plan.Inputs()
	inputPaths := make([]string, len(inputs))
	for i, f := range inputs {
		inputPaths[i] = f.Path
	}

	stagedInputs, err := e.scratchpad.LoadToScratchpad(ctx, inputPaths)
	if err != nil {
		return nil, &PlanError{Op: "stage_inputs", Err: err}
	}

	outputUUIDs := make([]uuid.UUID, plan.NOutputFiles())
	stagingOutputPaths := make([]string, len(outputUUIDs))
	for i := range outputUUIDs {
		outputUUIDs[i] = uuid.New()
		stagingOutputPaths[i] = scratchPath(outputUUIDs[i])
	}

	permits := ComputePermits(e.limiter.total, info.ColumnCount, e.cfg)
	release, err := e.limiter.Acquire(ctx, permits)
	if err != nil {
		return nil, &PlanError{Op: "acquire_permit", Err: err}
	}

	params, runErr := e.runner.RunPlan(ctx, plan, info, stagedInputs, stagingOutputPaths)
	release()

	if runErr != nil {
		return nil, &PlanError{Op: "run_plan", Err: runErr}
	}

	// The durable path each output lands at is derived from the same
	// UUID staging wrote it under, so the catalog commits a path that
	// actually holds the published bytes.
	durableOutputPaths := make([]string, len(params))
	for i, p := range params {
		p.PartitionID = info.PartitionID
		p.ObjectStoreUUID = outputUUIDs[i].String()
		durableOutputPaths[i] = objectStorePath(p)
	}

	if err := e.scratchpad.MakePublic(ctx, stagingOutputPaths[:len(params)], durableOutputPaths); err != nil {
		return nil, &PlanError{Op: "publish_outputs", Err: err}
	}

	return params, nil
}

// RunPlans executes every plan in plans against the same partition,
// sequentially.
//
// Open question (explicitly not guessed): the source this engine is
// modeled on chains a `.buffer_unordered(4)` after a point in run_plans
// that the rest of the pipeline makes unreachable, suggesting an
// abandoned intent to run a branch's plans concurrently. Nothing
// downstream of plan execution in this package assumes plans within a
// branch run in isolation from each other — they write disjoint output
// paths and only share the semaphore and the scratchpad, both of which
// are already safe for concurrent use — so a bounded-concurrency
// overlay could be dropped in here later without changing this
// function's contract. Today RunPlans is sequential, matching the
// current observable behavior rather than the unreachable code's
// apparent intent.
func (e *PlanExecutor) RunPlans(ctx context.Context, plans []*PlanIR, info *PartitionInfo) ([]*FileParams, error) {
	var all []*FileParams
	for _, plan := range plans {
		params, err := e.Execute(ctx, plan, info)
		if err != nil {
			return nil, err
		}
		all = append(all, params...)
	}
	return all, nil
}
