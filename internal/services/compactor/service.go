package compactor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/apache/arrow/go/v14/parquet/compress"

	"storage-engine/internal/catalog"
	"storage-engine/internal/compactor"
	"storage-engine/internal/config"
	"storage-engine/internal/schema"
	"storage-engine/internal/storage/block"
	"storage-engine/internal/storage/parquet"
)

// mockPersistenceLayer is a temporary mock implementation of
// catalog.PersistenceLayer, matching the one services.NewStorageManager
// uses to bootstrap its own in-memory catalog until a durable backend is
// wired in.
type mockPersistenceLayer struct{}

func (mockPersistenceLayer) Save(ctx context.Context) error                       { return nil }
func (mockPersistenceLayer) Load(ctx context.Context) error                       { return nil }
func (mockPersistenceLayer) Backup(ctx context.Context) error                     { return nil }
func (mockPersistenceLayer) Restore(ctx context.Context, backupPath string) error { return nil }
func (mockPersistenceLayer) Health(ctx context.Context) error                     { return nil }
func (mockPersistenceLayer) Close() error                                         { return nil }
func (mockPersistenceLayer) StoreFileMetadata(ctx context.Context, metadata *catalog.FileMetadata) error {
	return nil
}
func (mockPersistenceLayer) GetFileMetadata(ctx context.Context, path string) (*catalog.FileMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) ListAllFiles(ctx context.Context) ([]*catalog.FileMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) DeleteFileMetadata(ctx context.Context, path string) error { return nil }
func (mockPersistenceLayer) StoreSchemaMetadata(ctx context.Context, metadata *catalog.SchemaMetadata) error {
	return nil
}
func (mockPersistenceLayer) GetSchemaMetadata(ctx context.Context, tenantID string, version int) (*catalog.SchemaMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) GetLatestSchemaMetadata(ctx context.Context, tenantID string) (*catalog.SchemaMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) ListAllSchemas(ctx context.Context) ([]*catalog.SchemaMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) ListSchemaMetadata(ctx context.Context, tenantID string) ([]*catalog.SchemaMetadata, error) {
	return nil, nil
}
func (mockPersistenceLayer) DeleteSchemaMetadata(ctx context.Context, tenantID string, version int) error {
	return nil
}
func (mockPersistenceLayer) StoreColumnStats(ctx context.Context, stats *catalog.ColumnStatistics) error {
	return nil
}
func (mockPersistenceLayer) GetColumnStats(ctx context.Context, tenantID, column string) (*catalog.ColumnStatistics, error) {
	return nil, nil
}
func (mockPersistenceLayer) GetTableStats(ctx context.Context, tenantID string) (*catalog.TableStatistics, error) {
	return nil, nil
}
func (mockPersistenceLayer) DeleteColumnStats(ctx context.Context, tenantID, column string) error {
	return nil
}
func (mockPersistenceLayer) BeginTransaction(ctx context.Context) (catalog.Transaction, error) {
	return nil, nil
}
func (mockPersistenceLayer) Compact(ctx context.Context) error { return nil }
func (mockPersistenceLayer) GetCompactionCandidates(ctx context.Context, maxFiles int) ([]*catalog.CompactionJob, error) {
	return nil, nil
}
func (mockPersistenceLayer) StoreCompactionJob(ctx context.Context, job *catalog.CompactionJob) error {
	return nil
}

// Service owns the compaction engine's Driver and the collaborators it
// was built from, and runs it on a fixed interval.
type Service struct {
	driver               *compactor.Driver
	metrics              *compactor.MetricsDoneSink
	partitionConcurrency int
	partitionTimeout     time.Duration
	interval             time.Duration
}

// defaultTableSchema is the single-table schema the in-process plan
// runner reads and writes against. Every partition this service compacts
// is assumed to belong to a table shaped this way; a multi-table
// deployment needs a schema lookup per partition, which is future work.
func defaultTableSchema() *schema.TableSchema {
	ts := schema.NewTableSchema("default", "default")
	ts.Columns = append(ts.Columns,
		schema.ColumnSchema{Name: "timestamp", Type: schema.TypeTimestamp, Nullable: false},
		schema.ColumnSchema{Name: "value", Type: schema.TypeFloat64, Nullable: true},
	)
	return ts
}

// NewService builds a Service from cfg: an in-memory catalog (persisted
// through the same mock persistence layer services.NewStorageManager
// uses until a durable backend replaces it), local-filesystem durable
// and staging object stores, and the in-process Arrow plan runner.
func NewService(cfg *config.Config) (*Service, error) {
	catalogConfig := catalog.Config{
		CacheSize:         1000,
		CacheTTL:          time.Hour,
		CompactionWorkers: cfg.DataProcessor.WorkerCount,
		StatsTTL:          time.Hour * 24,
		BatchSize:         100,
	}
	cat, err := catalog.NewCatalog(mockPersistenceLayer{}, catalogConfig)
	if err != nil {
		return nil, fmt.Errorf("compactor service: create catalog: %w", err)
	}

	durableStorage, err := block.NewLocalFS(block.Config{Type: "local", BaseDir: cfg.Storage.LocalStoragePath})
	if err != nil {
		return nil, fmt.Errorf("compactor service: durable storage: %w", err)
	}
	stagingStorage, err := block.NewLocalFS(block.Config{Type: "local", BaseDir: cfg.Compactor.ScratchpadStagingPath})
	if err != nil {
		return nil, fmt.Errorf("compactor service: staging storage: %w", err)
	}

	runner, err := compactor.NewArrowPlanRunner(stagingStorage, schema.NewSchema(defaultTableSchema()), parquet.Config{
		Compression:  compress.Codecs.Snappy,
		RowGroupSize: 128 * 1024 * 1024,
		PageSize:     8 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("compactor service: plan runner: %w", err)
	}

	engineCfg := compactor.DefaultEngineConfig()
	engineCfg.SingleThreadedColumnCount = cfg.Compactor.SingleThreadedColumnCount
	engineCfg.MaxFilesPerPartitionPerRound = cfg.Compactor.MaxFilesPerPartitionPerRound
	engineCfg.MaxDesiredFileSizeBytes = cfg.Compactor.MaxDesiredFileSizeBytes
	engineCfg.PercentageMaxFileSize = cfg.Compactor.PercentageMaxFileSize
	if cfg.Compactor.MaxFilesPerPlan > 0 {
		engineCfg.MaxFilesPerPlan = cfg.Compactor.MaxFilesPerPlan
	}

	adapter := compactor.NewCatalogAdapter(cat)

	var partitionsSource compactor.PartitionsSource = compactor.NewCatalogPartitionsSource(cat)
	if cfg.Compactor.RandomizePartitionOrder {
		partitionsSource = compactor.NewRandomizeOrderPartitionsSource(partitionsSource, time.Now().UnixNano())
	}

	skipped := compactor.NewCatalogBackedSkippedCompactionsSink(compactor.NewSkippedCompactionsSink(), cat)
	metricsSink := compactor.NewMetricsDoneSink(skipped)
	doneSink := compactor.NewLoggingDoneSink(metricsSink)

	components := &compactor.Components{
		PartitionsSource:         partitionsSource,
		PartitionInfoSource:      adapter,
		PartitionFilesSource:     adapter,
		PartitionFilter:          compactor.NewHasWorkPartitionFilter(),
		RoundInfoSource:          compactor.NewRoundInfoSource(),
		RoundSplit:               compactor.NewRoundSplit(),
		DivideInitial:            compactor.NewDivideInitial(),
		FileClassifier:           compactor.NewFileClassifier(),
		PostClassificationFilter: compactor.NewNotEmptyClassificationFilter(),
		IRPlanner:                compactor.NewIRPlanner(),
		PlanRunner:               runner,
		CatalogClient:            adapter,
		PartitionDoneSink:        doneSink,
		ScratchpadFactory: func() compactor.Scratchpad {
			return compactor.NewScratchpad(durableStorage, stagingStorage)
		},
		Config: engineCfg,
	}

	limiter := compactor.NewLimiter(cfg.Compactor.TotalPermits)
	driver := compactor.NewDriver(components, limiter)

	partitionTimeout, err := compactor.ParseHumanDuration(cfg.Compactor.PartitionTimeout)
	if err != nil {
		return nil, fmt.Errorf("compactor service: parse partition_timeout: %w", err)
	}

	return &Service{
		driver:               driver,
		metrics:              metricsSink,
		partitionConcurrency: cfg.Compactor.PartitionConcurrency,
		partitionTimeout:     partitionTimeout.Std(),
		interval:             5 * time.Minute,
	}, nil
}

// Metrics returns the partition outcome counters ("ok" and one
// "error.<kind>" entry per ErrorKind seen) accumulated since the service
// started.
func (s *Service) Metrics() map[string]int64 {
	return s.metrics.Counts()
}

// Run invokes the engine once per interval until ctx is canceled,
// mirroring the ticker shape data_processing.Service uses for its other
// background loops.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			log.Println("🗜️  running compaction pass")
			if err := s.driver.Compact(ctx, s.partitionConcurrency, s.partitionTimeout); err != nil {
				log.Printf("🗜️  compaction pass failed: %v", err)
			}
		}
	}
}

// RunOnce invokes the engine a single time, used by the admin CLI's
// manual compaction trigger.
func (s *Service) RunOnce(ctx context.Context) error {
	return s.driver.Compact(ctx, s.partitionConcurrency, s.partitionTimeout)
}
