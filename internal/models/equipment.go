package models

import "gorm.io/gorm"

const (
	CategorySki       = "ski"
	CategorySnowboard = "snowboard"
	CategoryBoots     = "boots"
	CategoryHelmet    = "helmet"
	CategoryClothing  = "clothing"
)

// Equipment is a catalog item shown on the rental pages.
type Equipment struct {
	gorm.Model
	Name              string  `gorm:"uniqueIndex;not null" json:"name"`
	Category          string  `gorm:"index;not null" json:"category"`
	Size              string  `gorm:"index;not null" json:"size"`
	Condition         string  `gorm:"not null" json:"condition"`
	DailyRate         int64   `gorm:"not null" json:"daily_rate"`
	TotalQuantity     int     `gorm:"not null" json:"total_quantity"`
	AvailableQuantity int     `gorm:"not null" json:"available_quantity"`
	Description       string  `json:"description"`
	ImageURL          *string `json:"image_url,omitempty"`
}
