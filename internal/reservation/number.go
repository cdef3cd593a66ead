package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"gorm.io/gorm"
)

const (
	NumberPrefix      = "RSV"
	maxNumberAttempts = 100
)

var ErrNumberUnavailable = errors.New("could not allocate a reservation number")

// NextNumber allocates RSV + YYYYMMDD + a three digit daily sequence for the
// calendar date of now. The sequence starts after the bookings already made
// that day and moves on while a number is taken.
func NextNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := NumberPrefix + now.Format("20060102")

	var count int64
	if err := tx.Unscoped().Model(&models.Reservation{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count reservations: %w", err)
	}

	seq := count + 1
	for range maxNumberAttempts {
		number := fmt.Sprintf("%s%03d", prefix, seq)
		var taken int64
		if err := tx.Unscoped().Model(&models.Reservation{}).
			Where("number = ?", number).
			Count(&taken).Error; err != nil {
			return "", fmt.Errorf("failed to check reservation number: %w", err)
		}
		if taken == 0 {
			return number, nil
		}
		seq++
	}
	return "", ErrNumberUnavailable
}
