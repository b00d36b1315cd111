package data_processing

import (
	"context"
	"fmt"
	"log"
	"time"

	"storage-engine/internal/config"
	compactorsvc "storage-engine/internal/services/compactor"
)

// Service handles background data processing
type Service struct {
	config *config.Config
	// WAL reader, index builder, etc. will be added here
}

// NewService creates a new data processing service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// StartWALReplay starts the WAL replay process for crash recovery
func (s *Service) StartWALReplay(ctx context.Context) error {
	log.Println("🔄 Starting WAL replay...")
	// TODO: Implement WAL replay
	// 1. Find last checkpoint
	// 2. Replay WAL entries since checkpoint
	// 3. Reconstruct memtables
	// 4. Mark replay complete
	return nil
}

// StartMemtableFlush starts the memtable flush process
func (s *Service) StartMemtableFlush(ctx context.Context) error {
	log.Println("💾 Starting memtable flush process...")
	
	ticker := time.NewTicker(10 * time.Second) // Configurable
	defer ticker.Stop()
	
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// TODO: Check if memtables need flushing
			// 1. Check memtable size/age
			// 2. Flush to Parquet if needed
			// 3. Update indexes
			log.Println("💾 Checking memtables for flush...")
		}
	}
}

// StartCompaction starts the background partition compaction engine:
// the round x branch driver in internal/compactor, wired to the shared
// catalog and object store through internal/services/compactor.
func (s *Service) StartCompaction(ctx context.Context) error {
	log.Println("🗜️ Starting compaction process...")

	compactor, err := compactorsvc.NewService(s.config)
	if err != nil {
		return fmt.Errorf("start compaction: %w", err)
	}

	return compactor.Run(ctx)
}

// StartIndexMaintenance starts the index maintenance process
func (s *Service) StartIndexMaintenance(ctx context.Context) error {
	log.Println("📊 Starting index maintenance...")
	
	ticker := time.NewTicker(30 * time.Second) // Configurable
	defer ticker.Stop()
	
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// TODO: Maintain indexes
			// 1. Update statistics
			// 2. Rebuild degraded indexes
			// 3. Optimize index structures
			log.Println("📊 Maintaining indexes...")
		}
	}
}
