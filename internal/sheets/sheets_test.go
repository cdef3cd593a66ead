package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/database"
	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sampleReservation() *models.Reservation {
	renters := make([]models.ReservationRenter, 0, 12)
	for i := range 12 {
		renters = append(renters, models.ReservationRenter{
			Position:     i + 1,
			Name:         "Renter",
			Age:          25,
			FootSize:     "26.5",
			EquipType:    "板+靴",
			ClothingType: "單租雪衣",
			Helmet:       i == 0,
			FastWear:     true,
		})
	}
	return &models.Reservation{
		Model:       gorm.Model{ID: 7},
		Number:      "RSV20260110001",
		StartDate:   time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.January, 22, 0, 0, 0, 0, time.UTC),
		RentalDays:  3,
		PickupDate:  "2026-01-20",
		PickupTime:  "09:00",
		ReturnStore: "旭川店",
		Applicant: models.Contact{
			Name:  "Chen Wei",
			Phone: "912345678",
			Email: "chen@example.com",
		},
		Notes:          "late arrival",
		DiscountCode:   "SSW2526",
		OriginalAmount: 44000,
		DiscountAmount: 2200,
		TotalAmount:    41800,
		Renters:        renters,
	}
}

func TestBuildPayload(t *testing.T) {
	p := BuildPayload(sampleReservation(), time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "RSV20260110001", p.ReservationNumber)
	assert.Equal(t, "2026-01-10", p.BookingDate)
	assert.Equal(t, "2026-01-20", p.RentalDate)
	assert.Equal(t, "2026-01-22", p.ReturnDate)
	assert.Equal(t, "富良野店", p.PickupLocation)
	assert.Equal(t, "旭川店", p.ReturnLocation)
	assert.True(t, p.DifferentLocation)
	assert.Equal(t, 3, p.RentalDays)

	assert.Equal(t, "912345678", p.Applicant.Phone)
	assert.Equal(t, "Email", p.Applicant.MessagingApp.Type)
	assert.Equal(t, "chen@example.com", p.Applicant.MessagingApp.ID)
	assert.False(t, p.Applicant.Transportation.Required)
	assert.NotNil(t, p.Applicant.Transportation.Details)

	require.Len(t, p.Renters, MaxRenters)
	assert.Equal(t, "是", p.Renters[0].Helmet)
	assert.Equal(t, "否", p.Renters[1].Helmet)
	assert.Equal(t, "是", p.Renters[1].FaseBoot)
	assert.Equal(t, "26.5", p.Renters[0].ShoeSize)

	assert.Equal(t, "SSW2526", p.DiscountCode)
	assert.Equal(t, int64(44000), p.OriginalAmount)
	assert.Equal(t, int64(2200), p.DiscountAmount)
	assert.Equal(t, int64(41800), p.TotalAmount)
	assert.Equal(t, "late arrival", p.Note)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	for _, key := range []string{"reservation_number", "bookingDate", "rentalDate", "returnDate", "pickup_date", "pickup_time", "pickupLocation", "returnLocation", "rentalDays", "differentLocation", "applicant", "renters", "discountCode", "originalAmount", "discountAmount", "totalAmount", "note"} {
		assert.Contains(t, flat, key)
	}
	assert.Equal(t, float64(44000), flat["originalAmount"])
}

func TestBuildPayloadSameDefaultStore(t *testing.T) {
	res := sampleReservation()
	res.ReturnStore = ""
	p := BuildPayload(res, time.Now())
	assert.False(t, p.DifferentLocation)
}

func TestClientSend(t *testing.T) {
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		body.Store(p)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"success":true,"reservationId":"RSV20260110001"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.True(t, client.Enabled())
	require.NoError(t, client.Send(context.Background(), Payload{ReservationNumber: "RSV20260110001"}))
	assert.Equal(t, "RSV20260110001", body.Load().(Payload).ReservationNumber)
}

func TestClientSendFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"script error", http.StatusOK, `{"success":false,"message":"sheet locked"}`},
		{"server error", http.StatusInternalServerError, `{"success":true}`},
		{"not json", http.StatusOK, `<html>moved</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, time.Second).Send(context.Background(), Payload{})
			assert.ErrorIs(t, err, ErrRejected)
		})
	}

	assert.ErrorIs(t, NewClient("", time.Second).Send(context.Background(), Payload{}), ErrDisabled)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(srv.URL, 50*time.Millisecond).Send(context.Background(), Payload{})
	assert.Error(t, err)
}

func setupOutbox(t *testing.T, handler http.HandlerFunc, maxAttempts int) (*gorm.DB, *Outbox) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return db, NewOutbox(db, NewClient(srv.URL, time.Second), maxAttempts)
}

func TestOutboxDeliver(t *testing.T) {
	var calls atomic.Int32
	db, outbox := setupOutbox(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success":true}`))
	}, 3)

	job, err := outbox.Enqueue(db, sampleReservation(), time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, job.Key)
	assert.Equal(t, models.SyncPending, job.Status)

	require.NoError(t, outbox.Deliver(context.Background(), job))

	var stored models.SheetSyncJob
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, models.SyncDelivered, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.NotNil(t, stored.DeliveredAt)

	// Delivered jobs are not sent again.
	require.NoError(t, outbox.Deliver(context.Background(), &stored))
	delivered, err := outbox.RetryPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOutboxRetryUntilFailed(t *testing.T) {
	var healthy atomic.Bool
	db, outbox := setupOutbox(t, func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}, 2)
	ctx := context.Background()

	first, err := outbox.Enqueue(db, sampleReservation(), time.Now())
	require.NoError(t, err)
	second, err := outbox.Enqueue(db, sampleReservation(), time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, first.Key, second.Key)

	assert.ErrorIs(t, outbox.Deliver(ctx, first), ErrRejected)
	assert.Equal(t, models.SyncPending, first.Status)

	// First job reaches its last attempt, second gets its first.
	delivered, err := outbox.RetryPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, delivered)

	var stored models.SheetSyncJob
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, models.SyncFailed, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.Contains(t, stored.LastError, "502")

	healthy.Store(true)
	delivered, err = outbox.RetryPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	require.NoError(t, db.First(&stored, second.ID).Error)
	assert.Equal(t, models.SyncDelivered, stored.Status)
	assert.Empty(t, stored.LastError)
}

func TestOutboxDisabled(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	outbox := NewOutbox(db, NewClient("", time.Second), 3)

	job, err := outbox.Enqueue(db, sampleReservation(), time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, outbox.Deliver(context.Background(), job), ErrDisabled)

	delivered, err := outbox.RetryPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)

	var stored models.SheetSyncJob
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, models.SyncPending, stored.Status)
	assert.Zero(t, stored.Attempts)
}
