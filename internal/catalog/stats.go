package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ColumnStats contains statistics for a specific column
type ColumnStats struct {
	ColumnName    string             `json:"column_name"`
	DataType      string             `json:"data_type"`
	NullCount     int64              `json:"null_count"`
	DistinctCount int64              `json:"distinct_count"`
	MinValue      interface{}        `json:"min_value"`
	MaxValue      interface{}        `json:"max_value"`
	AvgLength     float64            `json:"avg_length,omitempty"`
	Cardinality   float64            `json:"cardinality"`
	Histogram     []*HistogramBucket `json:"histogram,omitempty"`
	LastUpdated   time.Time          `json:"last_updated"`
}

// PartitionStats contains statistics for a table partition
type PartitionStats struct {
	PartitionID string    `json:"partition_id"`
	RowCount    int64     `json:"row_count"`
	DataSize    int64     `json:"data_size"`
	MinKey      []byte    `json:"min_key"`
	MaxKey      []byte    `json:"max_key"`
	LastUpdated time.Time `json:"last_updated"`
}

// IndexStatistics contains statistics about an index
type IndexStatistics struct {
	IndexName   string    `json:"index_name"`
	TableName   string    `json:"table_name"`
	IndexSize   int64     `json:"index_size"`
	EntryCount  int64     `json:"entry_count"`
	Height      int       `json:"height"`
	Selectivity float64   `json:"selectivity"`
	LastUpdated time.Time `json:"last_updated"`
	UsageCount  uint64    `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
}

// QueryStats contains statistics about query performance
type QueryStats struct {
	QueryPattern   string        `json:"query_pattern"`
	ExecutionCount uint64        `json:"execution_count"`
	TotalTime      time.Duration `json:"total_time"`
	AvgTime        time.Duration `json:"avg_time"`
	MinTime        time.Duration `json:"min_time"`
	MaxTime        time.Duration `json:"max_time"`
	LastExecuted   time.Time     `json:"last_executed"`
	TablesAccessed []string      `json:"tables_accessed"`
	IndexesUsed    []string      `json:"indexes_used"`
}

// StatisticsManager manages and maintains database statistics
type StatisticsManager struct {
	mu         sync.RWMutex
	tableStats map[string]*TableStatistics
	indexStats map[string]*IndexStatistics
	queryStats map[string]*QueryStats

	// Configuration
	autoAnalyzeEnabled bool
	analyzeThreshold   float64 // Percentage of changes before auto-analyze
	histogramBuckets   int

	// Background tasks
	stopCh chan struct{}
	done   chan struct{}

	// Dependencies
	catalog *Catalog
}

// NewStatisticsManager creates a new statistics manager
func NewStatisticsManager(catalog *Catalog) *StatisticsManager {
	return &StatisticsManager{
		tableStats:         make(map[string]*TableStatistics),
		indexStats:         make(map[string]*IndexStatistics),
		queryStats:         make(map[string]*QueryStats),
		autoAnalyzeEnabled: true,
		analyzeThreshold:   0.1, // 10% change threshold
		histogramBuckets:   50,
		stopCh:             make(chan struct{}),
		done:               make(chan struct{}),
		catalog:            catalog,
	}
}

// Start begins background statistics collection
func (sm *StatisticsManager) Start(ctx context.Context) error {
	go sm.backgroundAnalyzer(ctx)
	return nil
}

// Stop gracefully shuts down the statistics manager
func (sm *StatisticsManager) Stop() error {
	close(sm.stopCh)
	<-sm.done
	return nil
}

// UpdateTableStats updates statistics for a table
func (sm *StatisticsManager) UpdateTableStats(tableName string, rowDelta int64, sizeDelta int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stats, exists := sm.tableStats[tableName]
	if !exists {
		stats = &TableStatistics{
			TableName:      tableName,
			ColumnStats:    make(map[string]*ColumnStats),
			PartitionStats: make(map[string]*PartitionStats),
			LastUpdated:    time.Now(),
		}
		sm.tableStats[tableName] = stats
	}

	stats.RowCount += rowDelta
	stats.DataSize += sizeDelta
	stats.WriteCount++
	stats.LastUpdated = time.Now()

	if stats.RowCount > 0 {
		stats.AvgRowSize = float64(stats.DataSize) / float64(stats.RowCount)
	}

	// Check if auto-analyze is needed
	if sm.autoAnalyzeEnabled && sm.shouldAnalyze(stats) {
		go sm.AnalyzeTable(tableName)
	}
}

// RecordTableRead records a read operation on a table
func (sm *StatisticsManager) RecordTableRead(tableName string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stats, exists := sm.tableStats[tableName]
	if !exists {
		stats = &TableStatistics{
			TableName:      tableName,
			ColumnStats:    make(map[string]*ColumnStats),
			PartitionStats: make(map[string]*PartitionStats),
		}
		sm.tableStats[tableName] = stats
	}

	stats.ReadCount++
	stats.LastAccessed = time.Now()
}

// UpdateIndexStats updates statistics for an index
func (sm *StatisticsManager) UpdateIndexStats(indexName string, entriesDelta int64, sizeDelta int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stats, exists := sm.indexStats[indexName]
	if !exists {
		stats = &IndexStatistics{
			IndexName:   indexName,
			LastUpdated: time.Now(),
		}
		sm.indexStats[indexName] = stats
	}

	stats.EntryCount += entriesDelta
	stats.IndexSize += sizeDelta
	stats.LastUpdated = time.Now()

	// Calculate selectivity (simplified)
	if tableStats, exists := sm.tableStats[stats.TableName]; exists && tableStats.RowCount > 0 {
		stats.Selectivity = float64(stats.EntryCount) / float64(tableStats.RowCount)
	}
}

// RecordIndexUsage records usage of an index
func (sm *StatisticsManager) RecordIndexUsage(indexName string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stats, exists := sm.indexStats[indexName]
	if !exists {
		stats = &IndexStatistics{
			IndexName: indexName,
		}
		sm.indexStats[indexName] = stats
	}

	stats.UsageCount++
	stats.LastUsed = time.Now()
}

// RecordQuery records query execution statistics
func (sm *StatisticsManager) RecordQuery(pattern string, executionTime time.Duration, tablesAccessed, indexesUsed []string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	stats, exists := sm.queryStats[pattern]
	if !exists {
		stats = &QueryStats{
			QueryPattern:   pattern,
			MinTime:        executionTime,
			MaxTime:        executionTime,
			TablesAccessed: make([]string, len(tablesAccessed)),
			IndexesUsed:    make([]string, len(indexesUsed)),
		}
		copy(stats.TablesAccessed, tablesAccessed)
		copy(stats.IndexesUsed, indexesUsed)
		sm.queryStats[pattern] = stats
	}

	stats.ExecutionCount++
	stats.TotalTime += executionTime
	stats.AvgTime = stats.TotalTime / time.Duration(stats.ExecutionCount)
	stats.LastExecuted = time.Now()

	if executionTime < stats.MinTime {
		stats.MinTime = executionTime
	}
	if executionTime > stats.MaxTime {
		stats.MaxTime = executionTime
	}
}

// GetTableStats returns statistics for a table
func (sm *StatisticsManager) GetTableStats(tableName string) (*TableStatistics, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats, exists := sm.tableStats[tableName]
	if !exists {
		return nil, fmt.Errorf("statistics not found for table %s", tableName)
	}

	// Return a copy to avoid race conditions
	statsCopy := *stats
	statsCopy.ColumnStats = make(map[string]*ColumnStats)
	for k, v := range stats.ColumnStats {
		colStatsCopy := *v
		statsCopy.ColumnStats[k] = &colStatsCopy
	}

	return &statsCopy, nil
}

// GetIndexStats returns statistics for an index
func (sm *StatisticsManager) GetIndexStats(indexName string) (*IndexStatistics, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats, exists := sm.indexStats[indexName]
	if !exists {
		return nil, fmt.Errorf("statistics not found for index %s", indexName)
	}

	statsCopy := *stats
	return &statsCopy, nil
}

// GetQueryStats returns statistics for a query pattern
func (sm *StatisticsManager) GetQueryStats(pattern string) (*QueryStats, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats, exists := sm.queryStats[pattern]
	if !exists {
		return nil, fmt.Errorf("statistics not found for query pattern %s", pattern)
	}

	statsCopy := *stats
	return &statsCopy, nil
}

// ListTableStats returns statistics for all tables
func (sm *StatisticsManager) ListTableStats() map[string]*TableStatistics {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make(map[string]*TableStatistics)
	for k, v := range sm.tableStats {
		statsCopy := *v
		result[k] = &statsCopy
	}

	return result
}

// GetTopQueriesByTime returns the slowest queries
func (sm *StatisticsManager) GetTopQueriesByTime(limit int) []*QueryStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var queries []*QueryStats
	for _, stats := range sm.queryStats {
		statsCopy := *stats
		queries = append(queries, &statsCopy)
	}

	// Sort by average execution time (descending)
	sort.Slice(queries, func(i, j int) bool {
		return queries[i].AvgTime > queries[j].AvgTime
	})

	if limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}

	return queries
}

// GetTopQueriesByFrequency returns the most frequently executed queries
func (sm *StatisticsManager) GetTopQueriesByFrequency(limit int) []*QueryStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var queries []*QueryStats
	for _, stats := range sm.queryStats {
		statsCopy := *stats
		queries = append(queries, &statsCopy)
	}

	// Sort by execution count (descending)
	sort.Slice(queries, func(i, j int) bool {
		return queries[i].ExecutionCount > queries[j].ExecutionCount
	})

	if limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}

	return queries
}

// AnalyzeTable performs a full analysis of a table
func (sm *StatisticsManager) AnalyzeTable(tableName string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.analyzeTable(tableName)
}

// analyzeTable performs the actual table analysis (caller must hold lock)
func (sm *StatisticsManager) analyzeTable(tableName string) error {
	// In a real implementation, this would:
	// 1. Scan the table data
	// 2. Calculate column statistics
	// 3. Build histograms
	// 4. Update cardinality estimates

	stats, exists := sm.tableStats[tableName]
	if !exists {
		stats = &TableStatistics{
			TableName:      tableName,
			ColumnStats:    make(map[string]*ColumnStats),
			PartitionStats: make(map[string]*PartitionStats),
		}
		sm.tableStats[tableName] = stats
	}

	stats.LastAnalyzed = time.Now()

	// TODO: Implement actual table scanning and analysis
	// For now, just mark as analyzed

	return nil
}

// shouldAnalyze determines if a table needs analysis based on change threshold
func (sm *StatisticsManager) shouldAnalyze(stats *TableStatistics) bool {
	if stats.LastAnalyzed.IsZero() {
		return true // Never analyzed
	}

	// Check if enough time has passed
	if time.Since(stats.LastAnalyzed) < time.Hour {
		return false
	}

	// Check if enough changes have occurred
	changesSinceAnalysis := stats.WriteCount // Simplified metric
	threshold := uint64(float64(stats.RowCount) * sm.analyzeThreshold)

	return changesSinceAnalysis > threshold
}

// backgroundAnalyzer runs periodic analysis tasks
func (sm *StatisticsManager) backgroundAnalyzer(ctx context.Context) {
	defer close(sm.done)

	ticker := time.NewTicker(time.Hour) // Run every hour
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopCh:
			return
		case <-ticker.C:
			sm.performBackgroundAnalysis()
		}
	}
}

// performBackgroundAnalysis runs background statistics collection
func (sm *StatisticsManager) performBackgroundAnalysis() {
	sm.mu.RLock()

	var tablesToAnalyze []string
	for tableName, stats := range sm.tableStats {
		if sm.shouldAnalyze(stats) {
			tablesToAnalyze = append(tablesToAnalyze, tableName)
		}
	}

	sm.mu.RUnlock()

	// Analyze tables that need it
	for _, tableName := range tablesToAnalyze {
		err := sm.AnalyzeTable(tableName)
		if err != nil {
			// Log error but continue
			fmt.Printf("Background analysis failed for table %s: %v\n", tableName, err)
		}
	}
}

// EstimateCardinality estimates the cardinality of a column value
func (sm *StatisticsManager) EstimateCardinality(tableName, columnName string, value interface{}) float64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	tableStats, exists := sm.tableStats[tableName]
	if !exists {
		return 1.0 // Default estimate
	}

	colStats, exists := tableStats.ColumnStats[columnName]
	if !exists {
		return 1.0 // Default estimate
	}

	// Use histogram if available
	if len(colStats.Histogram) > 0 {
		for _, bucket := range colStats.Histogram {
			// Simplified bucket check
			if bucket.LowerBound == value || bucket.UpperBound == value {
				return bucket.Frequency
			}
		}
	}

	// Use selectivity estimate
	if colStats.DistinctCount > 0 {
		return 1.0 / float64(colStats.DistinctCount)
	}

	return 1.0 // Default estimate
}

// GetOverallStats returns system-wide statistics
func (sm *StatisticsManager) GetOverallStats() map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	totalTables := len(sm.tableStats)
	totalIndexes := len(sm.indexStats)
	totalQueries := len(sm.queryStats)

	var totalRows int64
	var totalDataSize int64
	var totalIndexSize int64

	for _, stats := range sm.tableStats {
		totalRows += stats.RowCount
		totalDataSize += stats.DataSize
	}

	for _, stats := range sm.indexStats {
		totalIndexSize += stats.IndexSize
	}

	return map[string]interface{}{
		"total_tables":         totalTables,
		"total_indexes":        totalIndexes,
		"total_queries":        totalQueries,
		"total_rows":           totalRows,
		"total_data_size":      totalDataSize,
		"total_index_size":     totalIndexSize,
		"auto_analyze_enabled": sm.autoAnalyzeEnabled,
		"analyze_threshold":    sm.analyzeThreshold,
	}
}
