package compactor

import (
	"context"
	"log"
	"sync"
)

// PartitionDoneSink receives exactly one outcome per compact_partition
// invocation. Implementations must never block the driver for long: the
// default MetricsDoneSink only updates in-memory counters and delegates.
type PartitionDoneSink interface {
	Record(ctx context.Context, partitionID PartitionID, err error)
}

// loggingDoneSink logs every outcome before delegating to inner.
type loggingDoneSink struct {
	inner PartitionDoneSink
}

// NewLoggingDoneSink wraps inner with a log line per outcome.
func NewLoggingDoneSink(inner PartitionDoneSink) PartitionDoneSink {
	return &loggingDoneSink{inner: inner}
}

func (l *loggingDoneSink) Record(ctx context.Context, partitionID PartitionID, err error) {
	if err != nil {
		log.Printf("🗜️  partition %d failed: %v", partitionID, err)
	} else {
		log.Printf("🗜️  partition %d compacted", partitionID)
	}
	l.inner.Record(ctx, partitionID, err)
}

// MetricsDoneSink classifies every outcome and keeps per-kind counters,
// then delegates to inner (typically a SkippedCompactionsSink).
type MetricsDoneSink struct {
	mu    sync.Mutex
	ok    int64
	byKind map[ErrorKind]int64
	inner PartitionDoneSink
}

// NewMetricsDoneSink wraps inner with ErrorKind-classified counters.
func NewMetricsDoneSink(inner PartitionDoneSink) *MetricsDoneSink {
	return &MetricsDoneSink{
		byKind: make(map[ErrorKind]int64),
		inner:  inner,
	}
}

// Record implements PartitionDoneSink.
func (m *MetricsDoneSink) Record(ctx context.Context, partitionID PartitionID, err error) {
	m.mu.Lock()
	if err == nil {
		m.ok++
	} else {
		m.byKind[Classify(err)]++
	}
	m.mu.Unlock()

	if m.inner != nil {
		m.inner.Record(ctx, partitionID, err)
	}
}

// Counts returns a snapshot of {ok, error.<kind>...} matching the shape
// used in the Done Sink metrics scenario.
func (m *MetricsDoneSink) Counts() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[string]int64{"ok": m.ok}
	for kind, n := range m.byKind {
		counts["error."+kind.String()] = n
	}
	return counts
}

// SkippedCompactionsSink parks persistently-failing partitions in a
// ledger keyed by ErrorKind, so an operator can see what's stuck and
// decide whether to retry (transient kinds like OutOfMemory) or
// intervene manually.
type SkippedCompactionsSink struct {
	mu      sync.Mutex
	skipped map[PartitionID]SkippedCompaction
}

// SkippedCompaction is one ledger entry.
type SkippedCompaction struct {
	PartitionID PartitionID
	Kind        ErrorKind
	Reason      string
}

// NewSkippedCompactionsSink constructs an empty ledger.
func NewSkippedCompactionsSink() *SkippedCompactionsSink {
	return &SkippedCompactionsSink{skipped: make(map[PartitionID]SkippedCompaction)}
}

// Record implements PartitionDoneSink. A successful outcome clears any
// prior ledger entry for the partition.
func (s *SkippedCompactionsSink) Record(ctx context.Context, partitionID PartitionID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.skipped, partitionID)
		return
	}

	s.skipped[partitionID] = SkippedCompaction{
		PartitionID: partitionID,
		Kind:        Classify(err),
		Reason:      err.Error(),
	}
}

// List returns every currently-skipped partition.
func (s *SkippedCompactionsSink) List() []SkippedCompaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SkippedCompaction, 0, len(s.skipped))
	for _, sc := range s.skipped {
		out = append(out, sc)
	}
	return out
}

// catalogSkippedCompactionsStore is the narrow slice of catalog.Catalog
// the persisted skipped-compactions ledger needs.
type catalogSkippedCompactionsStore interface {
	RecordSkippedCompaction(ctx context.Context, partitionID PartitionID, reason string) error
	ClearSkippedCompaction(ctx context.Context, partitionID PartitionID) error
}

// catalogBackedSkippedCompactionsSink wraps a SkippedCompactionsSink,
// additionally persisting every entry through the catalog's existing
// compaction job bookkeeping (StoreCompactionJob / CompactionStatusFailed)
// so the ledger survives a process restart instead of living only in
// memory.
type catalogBackedSkippedCompactionsSink struct {
	inner *SkippedCompactionsSink
	cat   catalogSkippedCompactionsStore
}

// NewCatalogBackedSkippedCompactionsSink wraps inner, persisting every
// record through cat.
func NewCatalogBackedSkippedCompactionsSink(inner *SkippedCompactionsSink, cat catalogSkippedCompactionsStore) PartitionDoneSink {
	return &catalogBackedSkippedCompactionsSink{inner: inner, cat: cat}
}

// Record implements PartitionDoneSink.
func (c *catalogBackedSkippedCompactionsSink) Record(ctx context.Context, partitionID PartitionID, err error) {
	c.inner.Record(ctx, partitionID, err)

	if err == nil {
		if clearErr := c.cat.ClearSkippedCompaction(ctx, partitionID); clearErr != nil {
			log.Printf("🗜️  partition %d: clear skipped compaction failed: %v", partitionID, clearErr)
		}
		return
	}

	if recErr := c.cat.RecordSkippedCompaction(ctx, partitionID, err.Error()); recErr != nil {
		log.Printf("🗜️  partition %d: record skipped compaction failed: %v", partitionID, recErr)
	}
}

// List returns every currently-skipped partition from the in-memory
// ledger (the catalog-persisted copy is for durability across restarts,
// not for hot-path reads).
func (c *catalogBackedSkippedCompactionsSink) List() []SkippedCompaction {
	return c.inner.List()
}
