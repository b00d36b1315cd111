package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Catalog defines the interface for metadata and catalog operations
type Catalog interface {
	// File operations
	RegisterFile(ctx context.Context, metadata *FileMetadata) error
	UpdateFile(ctx context.Context, path string, metadata *FileMetadata) error
	RemoveFile(ctx context.Context, path string) error
	GetFile(ctx context.Context, path string) (*FileMetadata, error)
	ListFiles(ctx context.Context, filter *FileFilter) ([]*FileMetadata, error)

	// Schema operations
	RegisterSchema(ctx context.Context, schema *SchemaMetadata) error
	GetSchema(ctx context.Context, tenantID string, version int) (*SchemaMetadata, error)
	GetLatestSchema(ctx context.Context, tenantID string) (*SchemaMetadata, error)
	ListSchemas(ctx context.Context, tenantID string) ([]*SchemaMetadata, error)

	// Statistics operations
	UpdateColumnStats(ctx context.Context, stats *ColumnStatistics) error
	GetColumnStats(ctx context.Context, tenantID, column string) (*ColumnStatistics, error)
	GetTableStats(ctx context.Context, tenantID string) (*TableStatistics, error)

	// Compaction operations
	MarkForCompaction(ctx context.Context, files []string, priority int) error
	GetCompactionCandidates(ctx context.Context, maxFiles int) ([]*CompactionJob, error)
	UpdateCompactionStatus(ctx context.Context, jobID string, status CompactionStatus) error

	// Skipped-partition bookkeeping for the compaction engine's Done Sink
	RecordSkippedCompaction(ctx context.Context, partitionID PartitionID, reason string) error
	ClearSkippedCompaction(ctx context.Context, partitionID PartitionID) error

	// Transaction operations
	BeginTransaction(ctx context.Context) (Transaction, error)

	// Table operations (needed by storage_manager.go)
	CreateTable(tableSchema interface{}) error
	GetTableSchema(tableID string) (interface{}, error)
	ListTables() ([]TableInfo, error)

	// Partition compaction operations
	FetchFilesForCompaction(ctx context.Context, partitionID PartitionID) ([]*FileMetadata, error)
	FetchPartitionInfo(ctx context.Context, partitionID PartitionID) (*PartitionInfo, error)
	CommitCompaction(ctx context.Context, req *CompactionCommitRequest) (*CompactionCommitResult, error)
	ListPartitions(ctx context.Context) ([]PartitionID, error)

	// Health and maintenance
	Health(ctx context.Context) error
	Compact(ctx context.Context) error
	Close() error
}

// CatalogImpl implements the Catalog interface
type CatalogImpl struct {
	mu          sync.RWMutex
	persistence PersistenceLayer
	config      Config

	// In-memory caches
	fileCache   map[string]*FileMetadata
	schemaCache map[string]*SchemaMetadata
	statsCache  map[string]*ColumnStatistics

	// Catalog data
	tables   map[string]*TableInfo
	schemas  map[string]*SchemaInfo
	indexes  map[string]*IndexInfo
	stats    *CatalogStats
	metadata *CatalogMetadata

	// Background tasks
	compactionJobs map[string]*CompactionJob
	nextJobID      int64

	// Per-partition metadata used by the compaction engine
	partitionInfo map[PartitionID]*PartitionInfo
}

// Config holds catalog configuration
type Config struct {
	CacheSize         int           `yaml:"cache_size" json:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	CompactionWorkers int           `yaml:"compaction_workers" json:"compaction_workers"`
	StatsTTL          time.Duration `yaml:"stats_ttl" json:"stats_ttl"`
	BatchSize         int           `yaml:"batch_size" json:"batch_size"`
}

// NewCatalog creates a new catalog instance
func NewCatalog(persistence PersistenceLayer, config Config) (*CatalogImpl, error) {
	catalog := &CatalogImpl{
		persistence:    persistence,
		config:         config,
		fileCache:      make(map[string]*FileMetadata),
		schemaCache:    make(map[string]*SchemaMetadata),
		statsCache:     make(map[string]*ColumnStatistics),
		tables:         make(map[string]*TableInfo),
		schemas:        make(map[string]*SchemaInfo),
		indexes:        make(map[string]*IndexInfo),
		stats:          &CatalogStats{},
		metadata:       &CatalogMetadata{Version: "1.0", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		compactionJobs: make(map[string]*CompactionJob),
		nextJobID:      1,
		partitionInfo:  make(map[PartitionID]*PartitionInfo),
	}

	// Load initial data from persistence layer
	if err := catalog.loadCaches(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load catalog caches: %w", err)
	}

	return catalog, nil
}

// File operations

// RegisterFile registers a new file in the catalog
func (c *CatalogImpl) RegisterFile(ctx context.Context, metadata *FileMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Validate metadata
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid file metadata: %w", err)
	}

	// Store in persistence layer
	if err := c.persistence.StoreFileMetadata(ctx, metadata); err != nil {
		return fmt.Errorf("failed to store file metadata: %w", err)
	}

	// Update cache
	c.fileCache[metadata.Path] = metadata

	return nil
}

// UpdateFile updates an existing file's metadata
func (c *CatalogImpl) UpdateFile(ctx context.Context, path string, metadata *FileMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if file exists
	existing, err := c.persistence.GetFileMetadata(ctx, path)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	// Update metadata
	metadata.Path = path
	metadata.UpdatedAt = time.Now()
	metadata.Version = existing.Version + 1

	// Store in persistence layer
	if err := c.persistence.StoreFileMetadata(ctx, metadata); err != nil {
		return fmt.Errorf("failed to update file metadata: %w", err)
	}

	// Update cache
	c.fileCache[path] = metadata

	return nil
}

// RemoveFile removes a file from the catalog
func (c *CatalogImpl) RemoveFile(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Remove from persistence layer
	if err := c.persistence.DeleteFileMetadata(ctx, path); err != nil {
		return fmt.Errorf("failed to delete file metadata: %w", err)
	}

	// Remove from cache
	delete(c.fileCache, path)

	return nil
}

// GetFile retrieves file metadata
func (c *CatalogImpl) GetFile(ctx context.Context, path string) (*FileMetadata, error) {
	c.mu.RLock()

	// Check cache first
	if metadata, exists := c.fileCache[path]; exists {
		c.mu.RUnlock()
		return metadata.Clone(), nil
	}
	c.mu.RUnlock()

	// Load from persistence layer
	metadata, err := c.persistence.GetFileMetadata(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	// Update cache
	c.mu.Lock()
	c.fileCache[path] = metadata
	c.mu.Unlock()

	return metadata.Clone(), nil
}

// ListFiles lists files matching the given filter
func (c *CatalogImpl) ListFiles(ctx context.Context, filter *FileFilter) ([]*FileMetadata, error) {
	// For large datasets, this should query the persistence layer directly
	// For now, we'll filter the cache
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []*FileMetadata
	for _, metadata := range c.fileCache {
		// If no filter provided, include all files
		if filter == nil || filter.Matches(metadata) {
			results = append(results, metadata.Clone())
		}
	}

	return results, nil
}

// Schema operations

// RegisterSchema registers a new schema version
func (c *CatalogImpl) RegisterSchema(ctx context.Context, schema *SchemaMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Generate schema key
	key := fmt.Sprintf("%s:%d", schema.TenantID, schema.Version)

	// Store in persistence layer
	if err := c.persistence.StoreSchemaMetadata(ctx, schema); err != nil {
		return fmt.Errorf("failed to store schema metadata: %w", err)
	}

	// Update cache
	c.schemaCache[key] = schema

	return nil
}

// GetSchema retrieves a specific schema version
func (c *CatalogImpl) GetSchema(ctx context.Context, tenantID string, version int) (*SchemaMetadata, error) {
	key := fmt.Sprintf("%s:%d", tenantID, version)

	c.mu.RLock()
	if schema, exists := c.schemaCache[key]; exists {
		c.mu.RUnlock()
		return schema.Clone(), nil
	}
	c.mu.RUnlock()

	// Load from persistence layer
	schema, err := c.persistence.GetSchemaMetadata(ctx, tenantID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema metadata: %w", err)
	}

	// Update cache
	c.mu.Lock()
	c.schemaCache[key] = schema
	c.mu.Unlock()

	return schema.Clone(), nil
}

// GetLatestSchema retrieves the latest schema version for a tenant
func (c *CatalogImpl) GetLatestSchema(ctx context.Context, tenantID string) (*SchemaMetadata, error) {
	return c.persistence.GetLatestSchemaMetadata(ctx, tenantID)
}

// ListSchemas lists all schema versions for a tenant
func (c *CatalogImpl) ListSchemas(ctx context.Context, tenantID string) ([]*SchemaMetadata, error) {
	return c.persistence.ListSchemaMetadata(ctx, tenantID)
}

// Statistics operations

// UpdateColumnStats updates column statistics
func (c *CatalogImpl) UpdateColumnStats(ctx context.Context, stats *ColumnStatistics) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fmt.Sprintf("%s:%s", stats.TenantID, stats.ColumnName)

	// Store in persistence layer
	if err := c.persistence.StoreColumnStats(ctx, stats); err != nil {
		return fmt.Errorf("failed to store column statistics: %w", err)
	}

	// Update cache
	c.statsCache[key] = stats

	return nil
}

// GetColumnStats retrieves column statistics
func (c *CatalogImpl) GetColumnStats(ctx context.Context, tenantID, column string) (*ColumnStatistics, error) {
	key := fmt.Sprintf("%s:%s", tenantID, column)

	c.mu.RLock()
	if stats, exists := c.statsCache[key]; exists {
		c.mu.RUnlock()
		return stats.Clone(), nil
	}
	c.mu.RUnlock()

	// Load from persistence layer
	stats, err := c.persistence.GetColumnStats(ctx, tenantID, column)
	if err != nil {
		return nil, fmt.Errorf("failed to get column statistics: %w", err)
	}

	// Update cache
	c.mu.Lock()
	c.statsCache[key] = stats
	c.mu.Unlock()

	return stats.Clone(), nil
}

// GetTableStats retrieves table-level statistics
func (c *CatalogImpl) GetTableStats(ctx context.Context, tenantID string) (*TableStatistics, error) {
	return c.persistence.GetTableStats(ctx, tenantID)
}

// Compaction operations

// MarkForCompaction marks files for compaction
func (c *CatalogImpl) MarkForCompaction(ctx context.Context, files []string, priority int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobID := fmt.Sprintf("compaction-%d", c.nextJobID)
	c.nextJobID++

	job := &CompactionJob{
		ID:        jobID,
		Files:     files,
		Priority:  priority,
		Status:    CompactionStatusPending,
		CreatedAt: time.Now(),
	}

	// Store in persistence layer
	if err := c.persistence.StoreCompactionJob(ctx, job); err != nil {
		return fmt.Errorf("failed to store compaction job: %w", err)
	}

	// Update cache
	c.compactionJobs[jobID] = job

	return nil
}

// GetCompactionCandidates retrieves compaction job candidates
func (c *CatalogImpl) GetCompactionCandidates(ctx context.Context, maxFiles int) ([]*CompactionJob, error) {
	return c.persistence.GetCompactionCandidates(ctx, maxFiles)
}

// RecordSkippedCompaction persists a failed partition compaction attempt
// through the same job bookkeeping MarkForCompaction uses, deterministically
// keyed per partition so a later success can supersede it in place.
func (c *CatalogImpl) RecordSkippedCompaction(ctx context.Context, partitionID PartitionID, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobID := fmt.Sprintf("skipped-partition-%d", partitionID)
	job := &CompactionJob{
		ID:        jobID,
		Files:     []string{fmt.Sprintf("partition-%d", partitionID)},
		Status:    CompactionStatusFailed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := c.persistence.StoreCompactionJob(ctx, job); err != nil {
		return fmt.Errorf("failed to record skipped compaction: %w", err)
	}

	c.compactionJobs[jobID] = job
	return nil
}

// ClearSkippedCompaction marks a previously-recorded skipped compaction
// as resolved once the partition compacts successfully.
func (c *CatalogImpl) ClearSkippedCompaction(ctx context.Context, partitionID PartitionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobID := fmt.Sprintf("skipped-partition-%d", partitionID)
	job, exists := c.compactionJobs[jobID]
	if !exists {
		return nil
	}

	job.Status = CompactionStatusCompleted
	job.UpdatedAt = time.Now()

	if err := c.persistence.StoreCompactionJob(ctx, job); err != nil {
		return fmt.Errorf("failed to clear skipped compaction: %w", err)
	}

	delete(c.compactionJobs, jobID)
	return nil
}

// UpdateCompactionStatus updates the status of a compaction job
func (c *CatalogImpl) UpdateCompactionStatus(ctx context.Context, jobID string, status CompactionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	job, exists := c.compactionJobs[jobID]
	if !exists {
		return fmt.Errorf("compaction job %s not found", jobID)
	}

	job.Status = status
	job.UpdatedAt = time.Now()

	// Store in persistence layer
	if err := c.persistence.StoreCompactionJob(ctx, job); err != nil {
		return fmt.Errorf("failed to update compaction job: %w", err)
	}

	return nil
}

// Transaction operations

// BeginTransaction starts a new transaction
func (c *CatalogImpl) BeginTransaction(ctx context.Context) (Transaction, error) {
	return c.persistence.BeginTransaction(ctx)
}

// Table operations (needed by storage_manager.go)

// CreateTable creates a new table
func (c *CatalogImpl) CreateTable(tableSchema interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// TODO: Implement table creation logic
	return nil
}

// GetTableSchema retrieves the schema of a table
func (c *CatalogImpl) GetTableSchema(tableID string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// TODO: Implement get table schema logic
	return nil, nil
}

// ListTables lists all tables
func (c *CatalogImpl) ListTables() ([]TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// TODO: Implement list tables logic
	return nil, nil
}

// Health and maintenance

// Health checks the health of the catalog
func (c *CatalogImpl) Health(ctx context.Context) error {
	return c.persistence.Health(ctx)
}

// Compact performs catalog maintenance operations
func (c *CatalogImpl) Compact(ctx context.Context) error {
	return c.persistence.Compact(ctx)
}

// Close closes the catalog and releases resources
func (c *CatalogImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Clear caches
	c.fileCache = nil
	c.schemaCache = nil
	c.statsCache = nil
	c.compactionJobs = nil

	// Close persistence layer
	return c.persistence.Close()
}

// Private methods

func (c *CatalogImpl) loadCaches(ctx context.Context) error {
	// This is a simplified implementation
	// In practice, you might want to load only the most recent/frequently accessed items

	// Load file metadata
	files, err := c.persistence.ListAllFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load file metadata: %w", err)
	}

	for _, file := range files {
		c.fileCache[file.Path] = file
	}

	// Load schema metadata
	schemas, err := c.persistence.ListAllSchemas(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schema metadata: %w", err)
	}

	for _, schema := range schemas {
		key := fmt.Sprintf("%s:%d", schema.TenantID, schema.Version)
		c.schemaCache[key] = schema
	}

	return nil
}

// Helper functions

// DefaultConfig returns a default catalog configuration
func DefaultConfig() Config {
	return Config{
		CacheSize:         10000,
		CacheTTL:          time.Hour,
		CompactionWorkers: 4,
		StatsTTL:          time.Hour * 6,
		BatchSize:         1000,
	}
}
