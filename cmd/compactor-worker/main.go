package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	compactorapi "storage-engine/internal/api/compactor"
	"storage-engine/internal/config"
	compactorsvc "storage-engine/internal/services/compactor"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "compactor-worker",
	Short: "Partition compaction engine worker",
	Long:  `Runs the round x branch partition compaction engine against the storage engine's catalog.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compaction engine continuously",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("🗜️  Starting Compactor Worker...")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		svc, err := compactorsvc.NewService(cfg)
		if err != nil {
			return fmt.Errorf("failed to create compactor service: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			log.Println("🛑 Shutting down Compactor Worker...")
			cancel()
		}()

		healthzPort := 8096
		gin.SetMode(gin.ReleaseMode)
		router := gin.Default()
		compactorapi.NewHandler(svc).Routes(router)
		go func() {
			log.Printf("🌐 Compactor worker diagnostics listening on port %d", healthzPort)
			if err := router.Run(fmt.Sprintf(":%d", healthzPort)); err != nil && err != http.ErrServerClosed {
				log.Printf("⚠️  diagnostics server stopped: %v", err)
			}
		}()

		log.Println("✅ Compactor Worker started successfully")

		if err := svc.Run(ctx); err != nil && err != context.Canceled {
			return fmt.Errorf("compactor worker stopped: %w", err)
		}

		log.Println("👋 Compactor Worker stopped")
		return nil
	},
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Run a single compaction pass over every known partition and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("🗜️  Running a single compaction pass...")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		svc, err := compactorsvc.NewService(cfg)
		if err != nil {
			return fmt.Errorf("failed to create compactor service: %w", err)
		}

		if err := svc.RunOnce(context.Background()); err != nil {
			return fmt.Errorf("compaction pass failed: %w", err)
		}

		log.Println("✅ Compaction pass complete")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the compactor worker version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("compactor-worker", version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(drainCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
