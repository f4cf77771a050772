package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"road_treatment/internal/config"
	"road_treatment/internal/logger"
	"road_treatment/internal/models"
	"road_treatment/internal/services"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed empty stock for every TMC",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.Setup(settings.Log.File, settings.Log.Level)

			db, err := config.InitDB(settings.Database)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			return migrateAndSeed(cmd.Context(), db)
		},
	}
}

func migrateAndSeed(ctx context.Context, db *gorm.DB) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var tmcs []models.TMC
	if err := db.WithContext(ctx).Find(&tmcs).Error; err != nil {
		return fmt.Errorf("failed to list TMCs: %w", err)
	}
	inventory := services.NewInventoryService(db)
	for _, tmc := range tmcs {
		if err := inventory.EnsureRegionStock(ctx, tmc.ID); err != nil {
			return fmt.Errorf("failed to seed stock for TMC %d: %w", tmc.ID, err)
		}
	}

	logrus.WithField("tmcs", len(tmcs)).Info("Migration complete")
	return nil
}
