package database

import (
	"testing"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedKeepsUsage(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, Seed(db))

	var count int64
	db.Model(&models.DiscountCode{}).Count(&count)
	assert.Equal(t, int64(len(SeasonCodes)), count)

	require.NoError(t, db.Model(&models.DiscountCode{}).
		Where("code = ?", "EarlyBird2526").
		Updates(map[string]any{"used_count": 7, "active": false, "discount_value": 50}).Error)

	require.NoError(t, Seed(db))

	db.Model(&models.DiscountCode{}).Count(&count)
	assert.Equal(t, int64(len(SeasonCodes)), count)

	var code models.DiscountCode
	require.NoError(t, db.Where("code = ?", "EarlyBird2526").First(&code).Error)
	assert.Equal(t, 7, code.UsedCount)
	assert.True(t, code.Active)
	assert.Equal(t, 20.0, code.DiscountValue)
	assert.Nil(t, code.UsageLimit)
	require.NotNil(t, code.ValidUntil)
	assert.Equal(t, "2027-12-31", code.ValidUntil.Format("2006-01-02"))
}

func TestSeedEquipmentIsIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedEquipment(db))
	require.NoError(t, db.Model(&models.Equipment{}).
		Where("name = ?", "POC 安全帽").
		Update("available_quantity", 3).Error)
	require.NoError(t, SeedEquipment(db))

	var count int64
	db.Model(&models.Equipment{}).Count(&count)
	assert.Equal(t, int64(len(Catalog)), count)

	var helmet models.Equipment
	require.NoError(t, db.Where("name = ?", "POC 安全帽").First(&helmet).Error)
	assert.Equal(t, 3, helmet.AvailableQuantity)
	assert.Equal(t, models.CategoryHelmet, helmet.Category)
}
