package compactor

import (
	"context"
	"log"
	"math/rand"
	"sync"
)

// PartitionsSource produces the stream of partition identifiers the
// Driver considers for compaction. Implementations must only perform
// cheap, catalog-level filtering; inspecting individual files belongs
// to PartitionFilter and later stages.
type PartitionsSource interface {
	Fetch(ctx context.Context) ([]PartitionID, error)
	String() string
}

// MockPartitionsSource is a fixed, settable list of partitions, used in
// tests in place of a catalog-backed source.
type MockPartitionsSource struct {
	mu         sync.Mutex
	partitions []PartitionID
}

// NewMockPartitionsSource constructs a MockPartitionsSource seeded with
// partitions.
func NewMockPartitionsSource(partitions []PartitionID) *MockPartitionsSource {
	cp := make([]PartitionID, len(partitions))
	copy(cp, partitions)
	return &MockPartitionsSource{partitions: cp}
}

// Set replaces the source's partition list.
func (m *MockPartitionsSource) Set(partitions []PartitionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partitions = append([]PartitionID(nil), partitions...)
}

// Fetch implements PartitionsSource.
func (m *MockPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PartitionID(nil), m.partitions...), nil
}

func (m *MockPartitionsSource) String() string { return "mock" }

// catalogPartitionsSourceClient is the narrow slice of catalog.Catalog
// this package needs for CatalogPartitionsSource, kept separate from
// CatalogAdapter's CatalogClient so a Partition Stream implementation
// doesn't have to satisfy the commit-path interfaces too.
type catalogPartitionsSourceClient interface {
	ListPartitions(ctx context.Context) ([]PartitionID, error)
}

// CatalogPartitionsSource is the production PartitionsSource: every
// partition the catalog currently holds metadata for.
type CatalogPartitionsSource struct {
	cat catalogPartitionsSourceClient
}

// NewCatalogPartitionsSource wraps cat for use as a PartitionsSource.
func NewCatalogPartitionsSource(cat catalogPartitionsSourceClient) *CatalogPartitionsSource {
	return &CatalogPartitionsSource{cat: cat}
}

// Fetch implements PartitionsSource.
func (c *CatalogPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	return c.cat.ListPartitions(ctx)
}

func (c *CatalogPartitionsSource) String() string { return "catalog" }

// loggingPartitionsSource logs the size of every fetch without altering
// the result.
type loggingPartitionsSource struct {
	inner PartitionsSource
}

// NewLoggingPartitionsSource wraps inner with a log line per fetch.
func NewLoggingPartitionsSource(inner PartitionsSource) PartitionsSource {
	return &loggingPartitionsSource{inner: inner}
}

func (l *loggingPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	partitions, err := l.inner.Fetch(ctx)
	if err != nil {
		log.Printf("🗜️  partitions_source(%s): fetch failed: %v", l.inner, err)
		return nil, err
	}
	log.Printf("🗜️  partitions_source(%s): fetched %d partitions", l.inner, len(partitions))
	return partitions, nil
}

func (l *loggingPartitionsSource) String() string { return l.inner.String() }

// randomizeOrderPartitionsSource shuffles the fetch result so that a
// crashed worker does not always retry the same prefix of partitions
// first.
type randomizeOrderPartitionsSource struct {
	inner PartitionsSource
	rng   *rand.Rand
	mu    sync.Mutex
}

// NewRandomizeOrderPartitionsSource wraps inner, shuffling each fetch
// with the given seed.
func NewRandomizeOrderPartitionsSource(inner PartitionsSource, seed int64) PartitionsSource {
	return &randomizeOrderPartitionsSource{inner: inner, rng: rand.New(rand.NewSource(seed))}
}

func (r *randomizeOrderPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	partitions, err := r.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(partitions), func(i, j int) {
		partitions[i], partitions[j] = partitions[j], partitions[i]
	})
	return partitions, nil
}

func (r *randomizeOrderPartitionsSource) String() string { return r.inner.String() }

// notEmptyPartitionsSource retries inner a bounded number of times when
// it returns zero partitions, so a worker started just before the
// catalog finishes warming up doesn't exit immediately with no work.
type notEmptyPartitionsSource struct {
	inner      PartitionsSource
	minRetries int
}

// NewNotEmptyPartitionsSource wraps inner, retrying up to minRetries
// times on an empty result.
func NewNotEmptyPartitionsSource(inner PartitionsSource, minRetries int) PartitionsSource {
	return &notEmptyPartitionsSource{inner: inner, minRetries: minRetries}
}

func (n *notEmptyPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	for attempt := 0; ; attempt++ {
		partitions, err := n.inner.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if len(partitions) > 0 || attempt >= n.minRetries {
			return partitions, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
}

func (n *notEmptyPartitionsSource) String() string { return n.inner.String() }

// byIDPartitionsSource restricts inner's fetch to an explicit allowlist
// of partition IDs, used for operator-triggered single-partition
// compaction.
type byIDPartitionsSource struct {
	inner PartitionsSource
	ids   map[PartitionID]struct{}
}

// NewByIDPartitionsSource wraps inner, keeping only the listed ids.
func NewByIDPartitionsSource(inner PartitionsSource, ids []PartitionID) PartitionsSource {
	set := make(map[PartitionID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &byIDPartitionsSource{inner: inner, ids: set}
}

func (b *byIDPartitionsSource) Fetch(ctx context.Context) ([]PartitionID, error) {
	partitions, err := b.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]PartitionID, 0, len(partitions))
	for _, p := range partitions {
		if _, ok := b.ids[p]; ok {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (b *byIDPartitionsSource) String() string { return "by_id(" + b.inner.String() + ")" }
