// Package equipment serves the read-only equipment catalog.
package equipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("equipment not found")

// Filter narrows a catalog listing. Empty fields match everything.
type Filter struct {
	Category string
	Size     string
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns matching items ordered by name.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Equipment, error) {
	q := s.db.WithContext(ctx).Model(&models.Equipment{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Size != "" {
		q = q.Where("size = ?", f.Size)
	}
	items := []models.Equipment{}
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Equipment, error) {
	var item models.Equipment
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("equipment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	return &item, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "category")
}

func (s *Store) Sizes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "size")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := s.db.WithContext(ctx).Model(&models.Equipment{}).
		Distinct().
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment %ss: %w", column, err)
	}
	return values, nil
}
