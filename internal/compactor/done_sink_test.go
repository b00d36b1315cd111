package compactor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storage-engine/internal/storage/block"
)

func TestMetricsDoneSink_Counts(t *testing.T) {
	sink := NewMetricsDoneSink(nil)

	sink.Record(context.Background(), 1, errors.New("msg"))
	sink.Record(context.Background(), 2, errors.New("msg"))
	sink.Record(context.Background(), 3, &block.StorageError{Op: "read", Path: "x", Err: errors.New("object store not implemented")})
	sink.Record(context.Background(), 4, nil)

	counts := sink.Counts()
	assert.Equal(t, int64(1), counts["ok"])
	assert.Equal(t, int64(2), counts["error.unknown"])
	assert.Equal(t, int64(1), counts["error.object_store"])
}

func TestMetricsDoneSink_DelegatesToInner(t *testing.T) {
	inner := NewSkippedCompactionsSink()
	sink := NewMetricsDoneSink(inner)

	sink.Record(context.Background(), 7, errors.New("boom"))
	assert.Len(t, inner.List(), 1)

	sink.Record(context.Background(), 7, nil)
	assert.Empty(t, inner.List())
}

func TestSkippedCompactionsSink_ClearsOnSuccess(t *testing.T) {
	sink := NewSkippedCompactionsSink()

	sink.Record(context.Background(), 1, &TimeoutError{PartitionID: 1})
	entries := sink.List()
	assert.Len(t, entries, 1)
	assert.Equal(t, ErrorKindTimeout, entries[0].Kind)

	sink.Record(context.Background(), 1, nil)
	assert.Empty(t, sink.List())
}

type fakeSkippedCompactionsCatalog struct {
	recorded map[PartitionID]string
	cleared  map[PartitionID]bool
}

func newFakeSkippedCompactionsCatalog() *fakeSkippedCompactionsCatalog {
	return &fakeSkippedCompactionsCatalog{
		recorded: make(map[PartitionID]string),
		cleared:  make(map[PartitionID]bool),
	}
}

func (f *fakeSkippedCompactionsCatalog) RecordSkippedCompaction(ctx context.Context, partitionID PartitionID, reason string) error {
	f.recorded[partitionID] = reason
	return nil
}

func (f *fakeSkippedCompactionsCatalog) ClearSkippedCompaction(ctx context.Context, partitionID PartitionID) error {
	f.cleared[partitionID] = true
	return nil
}

func TestCatalogBackedSkippedCompactionsSink_PersistsAndClears(t *testing.T) {
	cat := newFakeSkippedCompactionsCatalog()
	sink := NewCatalogBackedSkippedCompactionsSink(NewSkippedCompactionsSink(), cat)

	sink.Record(context.Background(), 5, &TimeoutError{PartitionID: 5})
	assert.Contains(t, cat.recorded, PartitionID(5))
	assert.False(t, cat.cleared[5])

	sink.Record(context.Background(), 5, nil)
	assert.True(t, cat.cleared[5])
}
