package models

import (
	"time"

	"gorm.io/gorm"
)

type DiscountCode struct {
	gorm.Model
	Code          string     `gorm:"uniqueIndex;not null" json:"code"`
	Name          string     `gorm:"not null" json:"name"`
	DiscountType  string     `gorm:"not null" json:"discount_type"`
	DiscountValue float64    `gorm:"not null" json:"discount_value"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	UsageLimit    *int       `json:"usage_limit"`
	UsedCount     int        `gorm:"not null;default:0" json:"used_count"`
	Active        bool       `gorm:"not null" json:"active"`
}

// ReservationDiscount is the append-only record of a redeemed code. A
// reservation redeems at most one code.
type ReservationDiscount struct {
	gorm.Model
	ReservationID  uint  `gorm:"uniqueIndex;not null" json:"reservation_id"`
	DiscountCodeID uint  `gorm:"index;not null" json:"discount_code_id"`
	OriginalAmount int64 `json:"original_amount"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalAmount    int64 `json:"final_amount"`
}
