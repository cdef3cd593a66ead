package notifier

import (
	"testing"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatReservation(t *testing.T) {
	r := models.Reservation{
		Number:         "RSV20260115001",
		Status:         models.ReservationPending,
		StartDate:      time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, time.January, 17, 0, 0, 0, 0, time.UTC),
		RentalDays:     3,
		PickupStore:    "富良野店",
		ReturnStore:    "旭川店",
		Applicant:      models.Contact{Name: "Lin"},
		DiscountCode:   "EarlyBird2526",
		DiscountAmount: 4600,
		TotalAmount:    18400,
		Renters:        []models.ReservationRenter{{Name: "Lin"}, {Name: "Mei"}},
	}

	msg := FormatReservation(r)
	assert.Contains(t, msg, "RSV20260115001")
	assert.Contains(t, msg, "2026-01-15 - 2026-01-17 (3 days)")
	assert.Contains(t, msg, "富良野店 → 旭川店")
	assert.Contains(t, msg, "**Renters:** 2 (Lin, Mei)")
	assert.Contains(t, msg, "EarlyBird2526 (-¥4600)")
	assert.NotContains(t, msg, "Note")

	r.ReturnStore = r.PickupStore
	r.Status = models.ReservationCancelled
	msg = FormatReservation(r)
	assert.Contains(t, msg, "**Store:** 富良野店\n")
	assert.Contains(t, msg, "cancelled reservation")
}

func TestDiscordNotifierRequiresSession(t *testing.T) {
	err := NewDiscordNotifier(nil, "123").NotifyReservation(models.Reservation{})
	assert.Error(t, err)
}
