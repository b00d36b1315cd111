package compactor

import "context"

// CommitRequest is the atomic unit of catalog change a branch produces:
// the inputs it consumed, the files it upgraded in place, the files it
// created, and the pre-branch fingerprint used to detect a concurrent
// mutator.
type CommitRequest struct {
	PartitionID   PartitionID
	DeleteFiles   []string
	UpgradeFiles  []string
	CreateFiles   []*FileParams
	TargetLevel   Level
	ExpectedState SavedParquetFileState
}

// CommitResult reports what a commit actually did.
type CommitResult struct {
	CreatedPaths    []string
	FingerprintDiff bool
}

// CatalogClient is the narrow collaborator the commit stage needs from
// the catalog of record. CatalogAdapter is the production
// implementation, wrapping catalog.Catalog.
type CatalogClient interface {
	Commit(ctx context.Context, req *CommitRequest) (*CommitResult, error)
}

// Commit submits req to client and classifies the result. A
// FingerprintDiff is logged by the caller (see driver.go) but does not
// make Commit itself return an error: per the engine's chosen
// concurrency policy, a mismatch against ExpectedState is a signal for
// observability, not a reason to throw away completed work.
func Commit(ctx context.Context, client CatalogClient, req *CommitRequest) (*CommitResult, error) {
	result, err := client.Commit(ctx, req)
	if err != nil {
		return nil, err
	}
	return result, nil
}
