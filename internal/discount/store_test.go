package discount

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/database"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createCode(t *testing.T, db *gorm.DB, code models.DiscountCode) models.DiscountCode {
	t.Helper()
	require.NoError(t, db.Create(&code).Error)
	return code
}

func TestGormStoreFindByCode(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	createCode(t, db, models.DiscountCode{
		Code:          "EXPIRED2020",
		Name:          "Old",
		DiscountType:  string(Percentage),
		DiscountValue: 10,
		ValidUntil:    day(2020, time.December, 31),
		Active:        true,
	})

	c, err := store.FindByCode(ctx, "EXPIRED2020")
	require.NoError(t, err)
	assert.Equal(t, Percentage, c.Kind)
	assert.ErrorIs(t, c.Check(time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)), ErrExpired)

	_, err = store.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreRedeem(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	row := createCode(t, db, models.DiscountCode{
		Code:          "FIXED500",
		Name:          "Five hundred off",
		DiscountType:  string(Fixed),
		DiscountValue: 500,
		UsageLimit:    intPtr(2),
		Active:        true,
	})
	app := Apply(FromModel(row), 10000)

	require.NoError(t, store.Redeem(ctx, Redemption{ReservationID: 1, Application: app}))

	// Same reservation again: no second usage row, no second increment.
	require.NoError(t, store.Redeem(ctx, Redemption{ReservationID: 1, Application: app}))

	var used models.DiscountCode
	require.NoError(t, db.First(&used, row.ID).Error)
	assert.Equal(t, 1, used.UsedCount)

	require.NoError(t, store.Redeem(ctx, Redemption{ReservationID: 2, Application: app}))

	err := store.Redeem(ctx, Redemption{ReservationID: 3, Application: app})
	assert.ErrorIs(t, err, ErrUsageLimitReached)

	require.NoError(t, db.First(&used, row.ID).Error)
	assert.Equal(t, 2, used.UsedCount)

	var records []models.ReservationDiscount
	require.NoError(t, db.Order("reservation_id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, uint(1), records[0].ReservationID)
	assert.Equal(t, int64(500), records[0].DiscountAmount)
	assert.Equal(t, int64(9500), records[0].FinalAmount)
}

func TestGormStoreRedeemConcurrent(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	row := createCode(t, db, models.DiscountCode{
		Code:          "LASTONE",
		Name:          "Single use",
		DiscountType:  string(Percentage),
		DiscountValue: 5,
		UsageLimit:    intPtr(1),
		Active:        true,
	})
	app := Apply(FromModel(row), 20000)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = store.Redeem(ctx, Redemption{ReservationID: uint(100 + i), Application: app})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrUsageLimitReached)
	}
	assert.Equal(t, 1, succeeded)

	var used models.DiscountCode
	require.NoError(t, db.First(&used, row.ID).Error)
	assert.Equal(t, 1, used.UsedCount)

	var records int64
	db.Model(&models.ReservationDiscount{}).Count(&records)
	assert.Equal(t, int64(1), records)
}

func TestResolverAgainstGormStore(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, database.Seed(db))
	resolver := NewResolver(NewGormStore(db))
	ctx := context.Background()
	asOf := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	app, err := resolver.Resolve(ctx, "EarlyBird2526", asOf, 18000, nil)
	require.NoError(t, err)
	assert.Equal(t, "早鳥優惠 2025-2026", app.Name)
	assert.Equal(t, int64(3600), app.Discount)
	assert.Equal(t, int64(14400), app.Final)

	app, err = resolver.Resolve(ctx, "SSW2526", asOf, 12345, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(617), app.Discount)

	_, err = resolver.Validate(ctx, "EarlyBird2526", time.Date(2028, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestGormStoreCreateAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	code := &models.DiscountCode{Code: "PARTNER", Name: "Partner", DiscountType: string(Fixed), DiscountValue: 1500, Active: true}
	require.NoError(t, store.Create(ctx, code))
	assert.NotZero(t, code.ID)

	dup := &models.DiscountCode{Code: "PARTNER", Name: "Again", DiscountType: string(Fixed), DiscountValue: 1, Active: true}
	assert.ErrorIs(t, store.Create(ctx, dup), ErrDuplicate)

	updated, err := store.Update(ctx, "PARTNER", map[string]any{
		"active":      false,
		"usage_limit": 5,
		"used_count":  99,
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	require.NotNil(t, updated.UsageLimit)
	assert.Equal(t, 5, *updated.UsageLimit)
	assert.Zero(t, updated.UsedCount)

	_, err = store.Update(ctx, "MISSING", map[string]any{"active": true})
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PARTNER", rows[0].Code)
}
