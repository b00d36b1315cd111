package query

import (
	"context"
	"log"

	"storage-engine/internal/config"
)

// Service handles query business logic
type Service struct {
	config *config.Config
	// Index manager, Parquet reader, etc. will be added here
}

// NewService creates a new query service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// ExecuteQuery executes a query and returns results
func (s *Service) ExecuteQuery(ctx context.Context, query interface{}) (interface{}, error) {
	log.Println("🔍 Executing query...")
	// TODO: Implement query execution
	// 1. Parse and validate query
	// 2. Create execution plan
	// 3. Execute against indexes and Parquet files
	// 4. Return results
	return nil, nil
}

// GetRecord retrieves a specific record by ID
func (s *Service) GetRecord(ctx context.Context, recordID interface{}) (interface{}, error) {
	log.Println("📄 Getting record by ID...")
	// TODO: Implement record retrieval
	// 1. Look up in primary index
	// 2. Read from Parquet file
	// 3. Apply MVCC resolution
	// 4. Return record
	return nil, nil
}

// ExecuteAggregate executes an aggregation query
func (s *Service) ExecuteAggregate(ctx context.Context, aggQuery interface{}) (interface{}, error) {
	log.Println("📊 Executing aggregate query...")
	// TODO: Implement aggregation
	// 1. Parse aggregation query
	// 2. Optimize for columnar execution
	// 3. Execute against Parquet files
	// 4. Return aggregated results
	return nil, nil
}
