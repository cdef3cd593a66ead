package database

import (
	"fmt"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/config"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate")
	}

	if err := Seed(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed discount codes")
	}

	if err := SeedEquipment(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed equipment catalog")
	}

	return db
}

// Open opens the sqlite file at path. All access goes through a single
// connection, which also keeps ":memory:" databases alive between queries.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Reservation{},
		&models.ReservationRenter{},
		&models.DiscountCode{},
		&models.ReservationDiscount{},
		&models.SheetSyncJob{},
		&models.Equipment{},
	)
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SeasonCodes are the partner codes issued for the 2025-2026 season.
var SeasonCodes = []models.DiscountCode{
	{Code: "EarlyBird2526", Name: "早鳥優惠 2025-2026", DiscountType: "percentage", DiscountValue: 20},
	{Code: "SnowPink2526", Name: "Snow Pink 合作優惠", DiscountType: "percentage", DiscountValue: 5},
	{Code: "SSW2526", Name: "SSW 合作優惠", DiscountType: "percentage", DiscountValue: 5},
	{Code: "SFSZ526", Name: "SFSZ 專屬優惠", DiscountType: "percentage", DiscountValue: 5},
	{Code: "SFS2526", Name: "SFS 專屬優惠", DiscountType: "percentage", DiscountValue: 5},
}

// Seed upserts the season codes. Name, value and validity window are
// refreshed; usage counts are left alone.
func Seed(db *gorm.DB) error {
	for _, code := range SeasonCodes {
		code.ValidFrom = date(2024, time.January, 1)
		code.ValidUntil = date(2027, time.December, 31)
		code.Active = true
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "discount_type", "discount_value", "valid_from", "valid_until", "active", "updated_at"}),
		}).Create(&code).Error
		if err != nil {
			return fmt.Errorf("seed %s: %w", code.Code, err)
		}
	}
	return nil
}

// Catalog is the sample equipment the rental pages start with.
var Catalog = []models.Equipment{
	{Name: "Salomon 滑雪板", Category: models.CategorySki, Size: "170cm", Condition: "excellent", DailyRate: 800, TotalQuantity: 10, AvailableQuantity: 10, Description: "專業級滑雪板，適合中高級滑雪者"},
	{Name: "Burton 雪板", Category: models.CategorySnowboard, Size: "158cm", Condition: "good", DailyRate: 600, TotalQuantity: 8, AvailableQuantity: 8, Description: "全山型雪板，適合各種地形"},
	{Name: "Leki 滑雪杖", Category: models.CategorySki, Size: "120cm", Condition: "excellent", DailyRate: 100, TotalQuantity: 20, AvailableQuantity: 20, Description: "輕量化鋁合金滑雪杖"},
	{Name: "Salomon 滑雪靴", Category: models.CategoryBoots, Size: "42", Condition: "good", DailyRate: 400, TotalQuantity: 15, AvailableQuantity: 15, Description: "舒適保暖的滑雪靴"},
	{Name: "POC 安全帽", Category: models.CategoryHelmet, Size: "M", Condition: "excellent", DailyRate: 200, TotalQuantity: 25, AvailableQuantity: 25, Description: "高安全性滑雪安全帽"},
	{Name: "Columbia 滑雪外套", Category: models.CategoryClothing, Size: "L", Condition: "good", DailyRate: 300, TotalQuantity: 12, AvailableQuantity: 12, Description: "防水透氣的滑雪外套"},
	{Name: "North Face 滑雪褲", Category: models.CategoryClothing, Size: "32", Condition: "good", DailyRate: 250, TotalQuantity: 15, AvailableQuantity: 15, Description: "保暖防水的滑雪褲"},
	{Name: "Atomic 兒童滑雪板", Category: models.CategorySki, Size: "120cm", Condition: "excellent", DailyRate: 500, TotalQuantity: 5, AvailableQuantity: 5, Description: "適合兒童的輕量化滑雪板"},
}

// SeedEquipment inserts catalog items that are not there yet. Existing rows,
// including staff edits, are left alone.
func SeedEquipment(db *gorm.DB) error {
	for _, item := range Catalog {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&item).Error
		if err != nil {
			return fmt.Errorf("seed %s: %w", item.Name, err)
		}
	}
	return nil
}
