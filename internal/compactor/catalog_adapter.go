package compactor

import (
	"context"
	"fmt"

	"storage-engine/internal/catalog"
)

// CatalogAdapter is the production binding between the compaction
// engine's collaborator interfaces (PartitionInfoSource,
// PartitionFilesSource, CatalogClient) and the teacher's in-memory
// catalog.Catalog. It is the only place in this package that knows
// about catalog.FileMetadata's wire shape.
type CatalogAdapter struct {
	cat catalog.Catalog
}

// NewCatalogAdapter wraps cat for use by the compaction engine.
func NewCatalogAdapter(cat catalog.Catalog) *CatalogAdapter {
	return &CatalogAdapter{cat: cat}
}

// FetchPartitionInfo implements PartitionInfoSource.
func (a *CatalogAdapter) FetchPartitionInfo(ctx context.Context, id PartitionID) (*PartitionInfo, error) {
	info, err := a.cat.FetchPartitionInfo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch partition info: %w", err)
	}
	return &PartitionInfo{
		PartitionID:  info.PartitionID,
		NamespaceID:  info.NamespaceID,
		TableID:      info.TableID,
		PartitionKey: info.PartitionKey,
		SortKey:      info.SortKey,
		ColumnCount:  info.ColumnCount,
	}, nil
}

// FetchFiles implements PartitionFilesSource.
func (a *CatalogAdapter) FetchFiles(ctx context.Context, id PartitionID) ([]*File, error) {
	metas, err := a.cat.FetchFilesForCompaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch files for compaction: %w", err)
	}
	files := make([]*File, 0, len(metas))
	for _, m := range metas {
		files = append(files, fileFromMetadata(m))
	}
	return files, nil
}

func fileFromMetadata(m *catalog.FileMetadata) *File {
	return &File{
		Path:              m.Path,
		PartitionID:       m.PartitionID,
		ObjectStoreUUID:   m.ObjectStoreUUID,
		CompactionLevel:   Level(m.CompactionLevel),
		MinTime:           m.MinTime,
		MaxTime:           m.MaxTime,
		FileSizeBytes:     m.Size,
		RowCount:          m.RecordCount,
		MaxSequenceNumber: m.MaxSequenceNumber,
		CreatedAt:         m.CreatedAt,
		Deleted:           m.Status == catalog.FileStatusDeleted,
	}
}

// Commit implements CatalogClient (see commit.go).
func (a *CatalogAdapter) Commit(ctx context.Context, req *CommitRequest) (*CommitResult, error) {
	createFiles := make([]*catalog.FileMetadata, 0, len(req.CreateFiles))
	for _, p := range req.CreateFiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		createFiles = append(createFiles, &catalog.FileMetadata{
			Path:              objectStorePath(p),
			PartitionID:       p.PartitionID,
			ObjectStoreUUID:   p.ObjectStoreUUID,
			CompactionLevel:   int(p.CompactionLevel),
			MinTime:           p.MinTime,
			MaxTime:           p.MaxTime,
			Size:              p.FileSizeBytes,
			RecordCount:       p.RowCount,
			MaxSequenceNumber: p.MaxSequenceNumber,
			ColumnCount:       len(p.ColumnSet),
		})
	}

	expected := make([]catalog.FileFingerprint, len(req.ExpectedState.Fingerprints))
	for i, fp := range req.ExpectedState.Fingerprints {
		expected[i] = fp
	}

	result, err := a.cat.CommitCompaction(ctx, &catalog.CompactionCommitRequest{
		PartitionID:   req.PartitionID,
		DeleteFiles:   req.DeleteFiles,
		UpgradeFiles:  req.UpgradeFiles,
		CreateFiles:   createFiles,
		TargetLevel:   int(req.TargetLevel),
		ExpectedState: expected,
	})
	if err != nil {
		return nil, &CommitError{PartitionID: req.PartitionID, Err: err}
	}

	return &CommitResult{
		CreatedPaths:    result.CreatedPaths,
		FingerprintDiff: result.FingerprintDiff,
	}, nil
}

// objectStorePath assigns the durable path for a newly created file. The
// teacher's storage layer keys files by path, and compaction output
// paths are derived from the partition and the object store UUID
// assigned when the bytes were written to the scratchpad.
func objectStorePath(p *FileParams) string {
	return fmt.Sprintf("partition-%d/%s.parquet", p.PartitionID, p.ObjectStoreUUID)
}
