package main

import (
	"context"
	"fmt"
	"time"

	"secretstore-api/internal/config"
	"secretstore-api/internal/database"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupGraceDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge long-expired secrets",
	Long:  `Hard-delete secrets whose expiry passed more than the grace period ago. Listing keeps showing expired secrets until this runs.`,
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupGraceDays, "grace-days", 30, "days past expiry before a secret is purged")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info(ctx, "starting expired secret purge", zap.Int("grace_days", cleanupGraceDays))

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	secretRepo := repo.NewSecretRepository(pool)

	cutoff := time.Now().AddDate(0, 0, -cleanupGraceDays)
	rowsDeleted, err := secretRepo.PurgeExpired(ctx, cutoff)
	if err != nil {
		log.Error(ctx, "purge failed", zap.Error(err))
		return fmt.Errorf("failed to purge expired secrets: %w", err)
	}

	log.Info(ctx, "purge completed", zap.Int64("rows_deleted", rowsDeleted))
	fmt.Printf("Purge completed: %d expired secrets removed\n", rowsDeleted)

	return nil
}
