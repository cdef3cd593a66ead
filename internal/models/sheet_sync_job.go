package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SyncPending   = "pending"
	SyncDelivered = "delivered"
	SyncFailed    = "failed"
)

// SheetSyncJob is an outbox row holding the spreadsheet copy of a booking.
type SheetSyncJob struct {
	gorm.Model
	Key           string     `gorm:"uniqueIndex;not null"`
	ReservationID uint       `gorm:"index;not null"`
	Payload       string     `gorm:"not null"`
	Status        string     `gorm:"index;not null"`
	Attempts      int        `gorm:"not null;default:0"`
	LastError     string
	DeliveredAt   *time.Time
}
