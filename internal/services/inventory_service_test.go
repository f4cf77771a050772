package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
	"road_treatment/internal/testutil"
)

func stock(t *testing.T, db *gorm.DB, tmcID uint, material string) decimal.Decimal {
	t.Helper()
	var m models.Material
	require.NoError(t, db.Where("tmc_id = ? AND material_type = ?", tmcID, material).First(&m).Error)
	return m.QuantityTons
}

func setStock(t *testing.T, db *gorm.DB, tmcID uint, material string, qty int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Material{}).
		Where("tmc_id = ? AND material_type = ?", tmcID, material).
		Update("quantity_tons", decimal.NewFromInt(qty)).Error)
}

func TestInventory_UsageThenRestockRoundTrips(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewInventoryService(db)
	ctx := context.Background()
	setStock(t, db, f.TMC.ID, models.MaterialSalt, 10)

	used, err := svc.ApplyUsage(ctx, f.TMC.ID, models.MaterialSalt, decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-15).Equal(used.QuantityTons), "got %s", used.QuantityTons)

	restocked, err := svc.ApplyRestock(ctx, f.TMC.ID, models.MaterialSalt, decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(restocked.QuantityTons), "got %s", restocked.QuantityTons)
	assert.False(t, restocked.LastUpdated.IsZero())
}

func TestInventory_FractionalQuantities(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewInventoryService(db)

	_, err := svc.ApplyRestock(context.Background(), f.TMC.ID, models.MaterialBrine, decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	_, err = svc.ApplyUsage(context.Background(), f.TMC.ID, models.MaterialBrine, decimal.RequireFromString("2.25"))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("10.25").Equal(stock(t, db, f.TMC.ID, models.MaterialBrine)))
}

func TestInventory_RejectsBadDeltas(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewInventoryService(db)
	ctx := context.Background()

	_, err := svc.ApplyUsage(ctx, f.TMC.ID, "gravel", decimal.NewFromInt(1))
	assert.True(t, apperrors.Is(err, apperrors.TypeValidation))

	_, err = svc.ApplyRestock(ctx, f.TMC.ID, models.MaterialSand, decimal.Zero)
	assert.True(t, apperrors.Is(err, apperrors.TypeValidation))

	_, err = svc.ApplyUsage(ctx, 0, models.MaterialSand, decimal.NewFromInt(1))
	assert.True(t, apperrors.Is(err, apperrors.TypeValidation))

	_, err = svc.ApplyUsage(ctx, 777, models.MaterialSand, decimal.NewFromInt(1))
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))
}

func TestInventory_GetAndSetQuantity(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewInventoryService(db)
	ctx := context.Background()

	rows, err := svc.GetInventory(ctx, f.TMC.ID)
	require.NoError(t, err)
	require.Len(t, rows, len(models.MaterialTypes))

	updated, err := svc.SetQuantity(ctx, rows[0].ID, decimal.NewFromInt(80))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(updated.QuantityTons))

	_, err = svc.SetQuantity(ctx, 9999, decimal.NewFromInt(1))
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))

	_, err = svc.GetInventory(ctx, 0)
	assert.True(t, apperrors.Is(err, apperrors.TypeValidation))
}

func TestInventory_RecordTreatmentUsage(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	tickets := NewTicketService(db)
	svc := NewInventoryService(db)
	ctx := context.Background()
	setStock(t, db, f.TMC.ID, models.MaterialSalt, 40)
	v := newTicket(t, tickets, f, f.Trucks[0].ID, "005645", "005646")

	in := TreatmentUsageInput{
		TicketID:     v.ID,
		BridgeID:     "005645",
		MaterialType: models.MaterialSalt,
		QuantityTons: decimal.NewFromInt(3),
	}
	rec, err := svc.RecordTreatmentUsage(ctx, in)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(37).Equal(rec.QuantityTons))

	var row models.BridgeTreatment
	require.NoError(t, db.Where("ticket_id = ? AND bridge_id = ?", v.ID, "005645").First(&row).Error)
	require.NotNil(t, row.TreatedAt)
	require.NotNil(t, row.TreatmentType)
	assert.Equal(t, models.MaterialSalt, *row.TreatmentType)
	assert.True(t, row.MaterialUsedTons.Valid)
	assert.True(t, decimal.NewFromInt(3).Equal(row.MaterialUsedTons.Decimal))

	_, err = svc.RecordTreatmentUsage(ctx, in)
	assert.True(t, apperrors.Is(err, apperrors.TypeConflict))
	assert.True(t, decimal.NewFromInt(37).Equal(stock(t, db, f.TMC.ID, models.MaterialSalt)))
}

func TestInventory_RecordTreatmentUsageUnknownTicket(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	svc := NewInventoryService(db)
	setStock(t, db, f.TMC.ID, models.MaterialSand, 20)

	_, err := svc.RecordTreatmentUsage(context.Background(), TreatmentUsageInput{
		TicketID:     999,
		BridgeID:     "005645",
		MaterialType: models.MaterialSand,
		QuantityTons: decimal.NewFromInt(5),
	})
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))
	assert.True(t, decimal.NewFromInt(20).Equal(stock(t, db, f.TMC.ID, models.MaterialSand)))
}

func TestInventory_RecordTreatmentUsageRollsBackWithoutStockRow(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db)
	v := newTicket(t, NewTicketService(db), f, f.Trucks[0].ID, "005645")
	require.NoError(t, db.Where("tmc_id = ? AND material_type = ?", f.TMC.ID, models.MaterialBrine).Delete(&models.Material{}).Error)

	_, err := NewInventoryService(db).RecordTreatmentUsage(context.Background(), TreatmentUsageInput{
		TicketID:     v.ID,
		BridgeID:     "005645",
		MaterialType: models.MaterialBrine,
		QuantityTons: decimal.NewFromInt(1),
	})
	assert.True(t, apperrors.Is(err, apperrors.TypeNotFound))

	var row models.BridgeTreatment
	require.NoError(t, db.Where("ticket_id = ?", v.ID).First(&row).Error)
	assert.Nil(t, row.TreatedAt)
}

func TestInventory_EnsureRegionStockIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	tmc := models.TMC{Name: "South"}
	require.NoError(t, db.Create(&tmc).Error)
	svc := NewInventoryService(db)

	require.NoError(t, svc.EnsureRegionStock(context.Background(), tmc.ID))
	require.NoError(t, svc.EnsureRegionStock(context.Background(), tmc.ID))

	rows, err := svc.GetInventory(context.Background(), tmc.ID)
	require.NoError(t, err)
	assert.Len(t, rows, len(models.MaterialTypes))
}
