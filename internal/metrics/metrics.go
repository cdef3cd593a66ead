package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsCreated counts committed bookings, split by whether a
	// discount was redeemed.
	ReservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ski_rental_reservations_created_total",
			Help: "Number of reservations committed",
		},
		[]string{"discounted"},
	)

	// DiscountValidations counts code lookups by outcome (valid, not_found,
	// expired, ...).
	DiscountValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ski_rental_discount_validations_total",
			Help: "Number of discount code validations by outcome",
		},
		[]string{"outcome"},
	)

	DiscountRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ski_rental_discount_redemptions_total",
			Help: "Number of discount redemptions by outcome",
		},
		[]string{"outcome"},
	)

	SheetSyncAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ski_rental_sheet_sync_attempts_total",
			Help: "Number of spreadsheet delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	// BookingTotal tracks the final amount of each booking in yen.
	BookingTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "ski_rental_booking_total_yen",
			Help: "Final booking amount in yen",
			Buckets: []float64{
				5000,
				10000,
				20000,
				40000,
				80000,
				160000,
				320000,
			},
		},
	)
)

func RecordReservation(discounted bool, total int64) {
	label := "false"
	if discounted {
		label = "true"
	}
	ReservationsCreated.WithLabelValues(label).Inc()
	BookingTotal.Observe(float64(total))
}

func RecordDiscountValidation(outcome string) {
	DiscountValidations.WithLabelValues(outcome).Inc()
}

func RecordDiscountRedemption(outcome string) {
	DiscountRedemptions.WithLabelValues(outcome).Inc()
}

func RecordSheetSync(outcome string) {
	SheetSyncAttempts.WithLabelValues(outcome).Inc()
}
