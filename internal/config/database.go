package config

import (
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by the dialector
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"road_treatment/internal/logger"
	"road_treatment/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// DSN builds the lib/pq connection string.
func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// InitDB opens the Postgres connection through lib/pq and assigns the global handle.
func InitDB(s DatabaseSettings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        s.DSN(),
	}), &gorm.Config{
		Logger:         logger.GormLogger(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TMC{},
		&models.User{},
		&models.Truck{},
		&models.Ticket{},
		&models.BridgeTreatment{},
		&models.Material{},
		&models.TMCPreference{},
	)
}
