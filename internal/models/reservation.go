package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Contact is the applicant who made the booking.
type Contact struct {
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Messenger   string `json:"messenger"`
	MessengerID string `json:"messenger_id"`
	Hotel       string `json:"hotel"`
	ShuttleMode string `json:"shuttle_mode"`
	Shuttle     string `json:"shuttle"`
}

type Reservation struct {
	gorm.Model
	Number         string              `gorm:"uniqueIndex;not null" json:"reservation_number"`
	Status         string              `gorm:"not null" json:"status"`
	StartDate      time.Time           `json:"start_date"`
	EndDate        time.Time           `json:"end_date"`
	RentalDays     int                 `json:"rental_days"`
	PickupDate     string              `json:"pickup_date"`
	PickupTime     string              `json:"pickup_time"`
	PickupStore    string              `json:"pickup_store"`
	ReturnStore    string              `json:"return_store"`
	Applicant      Contact             `gorm:"embedded;embeddedPrefix:applicant_" json:"applicant"`
	Notes          string              `json:"notes"`
	EquipmentID    *uint               `gorm:"index" json:"equipment_id,omitempty"`
	DiscountCode   string              `json:"discount_code"`
	OriginalAmount int64               `json:"original_amount"`
	DiscountAmount int64               `json:"discount_amount"`
	TotalAmount    int64               `json:"total_amount"`
	Renters        []ReservationRenter `gorm:"foreignKey:ReservationID" json:"renters"`
}

type ReservationRenter struct {
	gorm.Model
	ReservationID uint    `gorm:"index;not null" json:"reservation_id"`
	Position      int     `json:"position"`
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	FootSize      string  `json:"foot_size"`
	Level         string  `json:"level"`
	SkiType       string  `json:"ski_type"`
	BoardType     string  `json:"board_type"`
	EquipType     string  `json:"equip_type"`
	ClothingType  string  `json:"clothing_type"`
	Helmet        bool    `json:"helmet"`
	FastWear      bool    `json:"fast_wear"`

	AgeGroup       string `json:"age_group"`
	Item           string `json:"item"`
	MainCost       int64  `json:"main_cost"`
	BootsCost      int64  `json:"boots_cost"`
	ClothingCost   int64  `json:"clothing_cost"`
	HelmetCost     int64  `json:"helmet_cost"`
	FastWearCost   int64  `json:"fast_wear_cost"`
	CrossStoreCost int64  `json:"cross_store_cost"`
	Subtotal       int64  `json:"subtotal"`
}
