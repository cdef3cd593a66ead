// Package discount decides whether a discount code may be used and how much it
// takes off a booking.
package discount

import (
	"errors"
	"math"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/pricing"
)

type Kind string

const (
	Percentage Kind = "percentage"
	Fixed      Kind = "fixed"
)

func (k Kind) Valid() bool {
	return k == Percentage || k == Fixed
}

// DefaultTolerance absorbs rounding differences between a client-side
// discount and the recomputed one.
const DefaultTolerance pricing.Money = 1

var (
	ErrNotFound          = errors.New("discount code not found")
	ErrInactive          = errors.New("discount code inactive")
	ErrNotYetValid       = errors.New("discount code not yet valid")
	ErrExpired           = errors.New("discount code expired")
	ErrUsageLimitReached = errors.New("discount code usage limit reached")
	ErrAmountMismatch    = errors.New("discount amount mismatch")
)

// IsInvalid reports whether err means the code simply does not apply. An
// amount mismatch is not in this class.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrNotYetValid) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrUsageLimitReached)
}

// Reason is a short machine-readable name for err, used as a metric label and
// in API responses.
func Reason(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInactive):
		return "inactive"
	case errors.Is(err, ErrNotYetValid):
		return "not_yet_valid"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrUsageLimitReached):
		return "usage_limit_reached"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	default:
		return "error"
	}
}

// Code is a discount code as stored. Nil bounds and a nil limit are unbounded.
type Code struct {
	ID         uint
	Code       string
	Name       string
	Kind       Kind
	Value      float64
	ValidFrom  *time.Time
	ValidUntil *time.Time
	UsageLimit *int
	UsedCount  int
	Active     bool
}

// Check applies the validity predicate as of the calendar date of asOf in its
// own location.
func (c Code) Check(asOf time.Time) error {
	if !c.Active {
		return ErrInactive
	}
	today := dateKey(asOf)
	if c.ValidFrom != nil && today < dateKey(*c.ValidFrom) {
		return ErrNotYetValid
	}
	if c.ValidUntil != nil && today > dateKey(*c.ValidUntil) {
		return ErrExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Amount is the discount taken off base. Percentages round half away from
// zero; fixed amounts never exceed the base.
func (c Code) Amount(base pricing.Money) pricing.Money {
	if base <= 0 {
		return 0
	}
	var discount pricing.Money
	switch c.Kind {
	case Percentage:
		discount = pricing.Money(math.Round(float64(base) * c.Value / 100))
	case Fixed:
		discount = pricing.Money(math.Round(c.Value))
	}
	if discount > base {
		discount = base
	}
	if discount < 0 {
		return 0
	}
	return discount
}

// Application is a discount computed against a specific base amount.
type Application struct {
	CodeID   uint          `json:"-"`
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Kind     Kind          `json:"type"`
	Value    float64       `json:"value"`
	Original pricing.Money `json:"original_amount"`
	Discount pricing.Money `json:"discount_amount"`
	Final    pricing.Money `json:"final_amount"`
}

func Apply(c Code, base pricing.Money) Application {
	discount := c.Amount(base)
	return Application{
		CodeID:   c.ID,
		Code:     c.Code,
		Name:     c.Name,
		Kind:     c.Kind,
		Value:    c.Value,
		Original: base,
		Discount: discount,
		Final:    base - discount,
	}
}

// CrossCheck compares a caller-supplied discount with the recomputed one.
func CrossCheck(app Application, claimed, tolerance pricing.Money) error {
	diff := app.Discount - claimed
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return ErrAmountMismatch
	}
	return nil
}
