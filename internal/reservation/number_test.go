package reservation

import (
	"testing"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/database"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	now := time.Date(2026, time.February, 3, 23, 50, 0, 0, tokyo)

	number, err := NextNumber(db, now)
	require.NoError(t, err)
	assert.Equal(t, "RSV20260203001", number)

	// The date comes from the zone of now.
	number, err = NextNumber(db, time.Date(2026, time.February, 4, 0, 30, 0, 0, tokyo).UTC())
	require.NoError(t, err)
	assert.Equal(t, "RSV20260203001", number)

	for _, n := range []string{"RSV20260203001", "RSV20260203003", "RSV20260202001"} {
		require.NoError(t, db.Create(&models.Reservation{Number: n, Status: models.ReservationPending}).Error)
	}

	// Two bookings today, so 003 is next, but it is taken.
	number, err = NextNumber(db, now)
	require.NoError(t, err)
	assert.Equal(t, "RSV20260203004", number)

	number, err = NextNumber(db, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "RSV20260204001", number)
}
