package compactor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"storage-engine/internal/storage/block"
)

// Scratchpad isolates in-flight compaction work from durable state: a
// plan's inputs are staged here under fresh identities, its outputs are
// written here first, and only make_public copies the finished bytes to
// the durable store. If the process dies mid-round, no durable object
// ever references a half-written output.
type Scratchpad interface {
	LoadToScratchpad(ctx context.Context, paths []string) ([]string, error)
	MakePublic(ctx context.Context, stagingPaths []string, durablePaths []string) error
	CleanFromScratchpad(ctx context.Context, paths []string) error
	Clean(ctx context.Context) error
}

// storageScratchpad implements Scratchpad over two block.Storage
// instances: durable is the catalog's object store, staging is
// typically a local filesystem in single-node deployments or a
// separate bucket/prefix in S3 deployments (see block.Factory). Both
// are ordinary block.Storage — the scratchpad needs no storage-specific
// behavior beyond Copy and Delete.
type storageScratchpad struct {
	durable block.Storage
	staging block.Storage

	mu      sync.Mutex
	staged  map[string]struct{}
}

// NewScratchpad constructs a Scratchpad backed by durable (the catalog's
// object store) and staging (ephemeral storage scoped to one partition
// attempt).
func NewScratchpad(durable, staging block.Storage) Scratchpad {
	return &storageScratchpad{
		durable: durable,
		staging: staging,
		staged:  make(map[string]struct{}),
	}
}

// LoadToScratchpad streams durable objects into staging under fresh
// UUIDs, so plan inputs are position-stable even if the source path is
// later mutated or deleted by another round. durable and staging are
// distinct block.Storage instances (separate base dirs/buckets), so a
// same-store Copy cannot move bytes between them — this must read from
// one and write to the other.
func (s *storageScratchpad) LoadToScratchpad(ctx context.Context, paths []string) ([]string, error) {
	newPaths := make([]string, len(paths))
	for i, p := range paths {
		staged := scratchPath(uuid.New())
		if err := streamCopy(ctx, s.durable, s.staging, p, staged); err != nil {
			return nil, fmt.Errorf("scratchpad: load %s: %w", p, err)
		}
		s.track(staged)
		newPaths[i] = staged
	}
	return newPaths, nil
}

// MakePublic streams each staged output at stagingPaths[i] to the
// durable store at durablePaths[i]. The caller picks durablePaths (the
// canonical per-object UUID path the catalog will record), so the
// bytes land at exactly the path the commit step references.
func (s *storageScratchpad) MakePublic(ctx context.Context, stagingPaths []string, durablePaths []string) error {
	for i, p := range stagingPaths {
		if err := streamCopy(ctx, s.staging, s.durable, p, durablePaths[i]); err != nil {
			return fmt.Errorf("scratchpad: publish %s: %w", p, err)
		}
	}
	return nil
}

// streamCopy reads src from the from store and writes it to dst on the
// to store. block.Storage.Copy only works within a single instance, so
// moving an object across the durable/staging boundary has to go
// through an io.Reader/io.Writer pair instead.
func streamCopy(ctx context.Context, from, to block.Storage, src, dst string) error {
	r, err := from.Reader(ctx, src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer r.Close()

	w, err := to.Writer(ctx, dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, copyErr := io.Copy(w, r); copyErr != nil {
		w.Close()
		return fmt.Errorf("copy %s -> %s: %w", src, dst, copyErr)
	}
	return w.Close()
}

// CleanFromScratchpad evicts specific staged objects.
func (s *storageScratchpad) CleanFromScratchpad(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := s.staging.DeleteBatch(ctx, paths); err != nil {
		return fmt.Errorf("scratchpad: clean: %w", err)
	}
	s.mu.Lock()
	for _, p := range paths {
		delete(s.staged, p)
	}
	s.mu.Unlock()
	return nil
}

// Clean evicts everything the scratchpad has staged. The driver calls
// it after every partition attempt, whether the attempt completed or
// timed out.
func (s *storageScratchpad) Clean(ctx context.Context) error {
	s.mu.Lock()
	paths := make([]string, 0, len(s.staged))
	for p := range s.staged {
		paths = append(paths, p)
	}
	s.mu.Unlock()
	return s.CleanFromScratchpad(ctx, paths)
}

func (s *storageScratchpad) track(path string) {
	s.mu.Lock()
	s.staged[path] = struct{}{}
	s.mu.Unlock()
}

func scratchPath(id uuid.UUID) string {
	return fmt.Sprintf("scratch/%s.parquet", id.String())
}
