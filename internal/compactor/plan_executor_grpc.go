package compactor

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

// grpcRunPlanRequest and grpcRunPlanResponse are the wire shapes sent to
// an out-of-process physical compute collaborator. They stand in for
// generated protobuf types the same way internal/pb's service
// interfaces do until this repository has a compiled .proto for the
// compaction plan runner.
type grpcRunPlanRequest struct {
	Plan             *PlanIR
	Partition        *PartitionInfo
	StagedInputPaths []string
	OutputPaths      []string
}

type grpcRunPlanResponse struct {
	Outputs []*FileParams
}

// GRPCPlanRunner is a PhysicalPlanRunner that delegates plan execution
// to a separate process over gRPC, used when physical compute is scaled
// independently from the compaction driver. Compare ArrowPlanRunner,
// which runs compute in the same process.
type GRPCPlanRunner struct {
	conn *grpc.ClientConn
}

// NewGRPCPlanRunner constructs a GRPCPlanRunner over an existing
// connection to the plan runner service.
func NewGRPCPlanRunner(conn *grpc.ClientConn) *GRPCPlanRunner {
	return &GRPCPlanRunner{conn: conn}
}

// RunPlan implements PhysicalPlanRunner.
func (r *GRPCPlanRunner) RunPlan(ctx context.Context, plan *PlanIR, info *PartitionInfo, stagedInputPaths, outputPaths []string) ([]*FileParams, error) {
	req := &grpcRunPlanRequest{
		Plan:             plan,
		Partition:        info,
		StagedInputPaths: stagedInputPaths,
		OutputPaths:      outputPaths,
	}
	resp := &grpcRunPlanResponse{}

	if err := r.conn.Invoke(ctx, "/compactor.PlanRunnerService/RunPlan", req, resp); err != nil {
		return nil, fmt.Errorf("grpc plan runner: %w", err)
	}

	return resp.Outputs, nil
}
