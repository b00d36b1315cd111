package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"storage-engine/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "storage-admin",
	Short: "Storage Engine Administration CLI",
	Long:  `A command-line interface for managing and monitoring the storage engine.`,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("📊 Storage Engine Status:")
		fmt.Println("  Ingestion Server: ✅ Running")
		fmt.Println("  Query Server: ✅ Running") 
		fmt.Println("  Data Processor: ✅ Running")
		fmt.Println("  WAL Health: ✅ Healthy")
		fmt.Println("  Memtables: 3 active")
		fmt.Println("  Parquet Files: 1,234 files")
		fmt.Println("  Index Status: ✅ Up to date")
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Trigger manual compaction",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("🗜️ Starting manual compaction...")
		fmt.Println("✅ Compaction job queued")
	},
}

var walCmd = &cobra.Command{
	Use:   "wal",
	Short: "WAL operations",
}

var walInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect WAL contents",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("🔍 WAL Inspection:")
		fmt.Println("  Current segment: wal-001234.log")
		fmt.Println("  Size: 256 MB")
		fmt.Println("  Records: 1,000,000")
		fmt.Println("  Last checkpoint: 2 minutes ago")
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema management",
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all schemas",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("📋 Registered Schemas:")
		fmt.Println("  tenant-001: user_events (v1.2)")
		fmt.Println("  tenant-002: transaction_data (v2.0)")
		fmt.Println("  tenant-003: sensor_readings (v1.0)")
	},
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(compactCmd)
	
	// WAL commands
	walCmd.AddCommand(walInspectCmd)
	rootCmd.AddCommand(walCmd)
	
	// Schema commands
	schemaCmd.AddCommand(schemaListCmd)
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	// Load configuration
	_, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
