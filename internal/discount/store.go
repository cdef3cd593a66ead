package discount

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps codes and their usage log in the application database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore binds the store to db, which may be an open transaction.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByCode(ctx context.Context, code string) (*Code, error) {
	var row models.DiscountCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up discount code: %w", err)
	}
	c := FromModel(row)
	return &c, nil
}

// Redeem appends the usage record and bumps used_count in one transaction.
// The increment is conditional on the cap so concurrent redemptions cannot
// overrun it; a repeated call for the same reservation is a no-op.
func (s *GormStore) Redeem(ctx context.Context, r Redemption) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ReservationDiscount{}).
			Where("reservation_id = ?", r.ReservationID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check discount usage: %w", err)
		}
		if existing > 0 {
			return nil
		}

		record := models.ReservationDiscount{
			ReservationID:  r.ReservationID,
			DiscountCodeID: r.Application.CodeID,
			OriginalAmount: r.Application.Original,
			DiscountAmount: r.Application.Discount,
			FinalAmount:    r.Application.Final,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record discount usage: %w", err)
		}

		res := tx.Model(&models.DiscountCode{}).
			Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", r.Application.CodeID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to increment discount usage: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", r.Application.Code, ErrUsageLimitReached)
		}
		return nil
	})
}

// List returns every code, newest first.
func (s *GormStore) List(ctx context.Context) ([]models.DiscountCode, error) {
	var rows []models.DiscountCode
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	return rows, nil
}

var ErrDuplicate = errors.New("discount code already exists")

// Create stores a new code. Codes stay unique even after soft deletion.
func (s *GormStore) Create(ctx context.Context, m *models.DiscountCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Unscoped().Model(&models.DiscountCode{}).
			Where("code = ?", m.Code).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check discount code: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("%s: %w", m.Code, ErrDuplicate)
		}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create discount code: %w", err)
		}
		return nil
	})
}

// Update applies column updates to the named code and returns the result.
// used_count is never touched here; it only moves through Redeem.
func (s *GormStore) Update(ctx context.Context, code string, updates map[string]any) (*models.DiscountCode, error) {
	delete(updates, "used_count")
	var row models.DiscountCode
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s: %w", code, ErrNotFound)
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&row).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update discount code: %w", err)
		}
		return tx.First(&row, row.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func FromModel(m models.DiscountCode) Code {
	return Code{
		ID:         m.ID,
		Code:       m.Code,
		Name:       m.Name,
		Kind:       Kind(m.DiscountType),
		Value:      m.DiscountValue,
		ValidFrom:  m.ValidFrom,
		ValidUntil: m.ValidUntil,
		UsageLimit: m.UsageLimit,
		UsedCount:  m.UsedCount,
		Active:     m.Active,
	}
}
