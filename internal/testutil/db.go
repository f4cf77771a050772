// Package testutil opens throwaway databases and seeds the rows most tests need.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"road_treatment/internal/config"
	"road_treatment/internal/models"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
// A single connection keeps transactions serialised the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Fixture holds the ids of a seeded region.
type Fixture struct {
	TMC        models.TMC
	Admin      models.User
	Dispatcher models.User
	Driver     models.User
	Trucks     []models.Truck
}

// Seed creates one TMC, one user per role, two available trucks and zero stock
// for every material.
func Seed(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()

	f := &Fixture{TMC: models.TMC{Name: "North Alabama TMC", Region: "north"}}
	require.NoError(t, db.Create(&f.TMC).Error)

	tmcID := f.TMC.ID
	f.Admin = models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin, Name: "Admin"}
	f.Dispatcher = models.User{Email: "dispatch@example.com", PasswordHash: "x", Role: models.RoleDispatcher, TMCID: &tmcID, Name: "Dispatch"}
	f.Driver = models.User{Email: "driver@example.com", PasswordHash: "x", Role: models.RoleDriver, TMCID: &tmcID, Name: "Dana Driver"}
	for _, u := range []*models.User{&f.Admin, &f.Dispatcher, &f.Driver} {
		require.NoError(t, db.Create(u).Error)
	}

	f.Trucks = []models.Truck{
		{TruckNumber: "T-100", TMCID: tmcID, Status: models.TruckAvailable, CapacityTons: 10},
		{TruckNumber: "T-200", TMCID: tmcID, Status: models.TruckAvailable, CapacityTons: 12},
	}
	require.NoError(t, db.Create(&f.Trucks).Error)

	for _, m := range models.MaterialTypes {
		require.NoError(t, db.Create(&models.Material{TMCID: tmcID, MaterialType: m}).Error)
	}
	return f
}
