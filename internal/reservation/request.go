package reservation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/pricing"
	"github.com/go-playground/validator/v10"
)

const MaxRenters = 10

// Request is a booking as submitted by the reservation form. Amounts are the
// client-side figures; the server reprices and only cross-checks them.
type Request struct {
	Applicant      Applicant `json:"applicant"`
	Renters        []Renter  `json:"renters,omitempty" validate:"required,min=1,max=10,dive"`
	StartDate      string    `json:"start_date,omitempty" validate:"required,datetime=2006-01-02"`
	EndDate        string    `json:"end_date,omitempty" validate:"required,datetime=2006-01-02"`
	PickupDate     string    `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PickupTime     string    `json:"pickup_time,omitempty" validate:"omitempty,datetime=15:04"`
	PickupStore    string    `json:"pickup_store,omitempty" validate:"omitempty,store"`
	ReturnStore    string    `json:"return_store,omitempty" validate:"omitempty,store"`
	Notes          string    `json:"notes,omitempty" validate:"max=2000"`
	DiscountCode   string    `json:"discount_code,omitempty" validate:"max=64"`
	OriginalAmount *int64    `json:"original_amount,omitempty" validate:"omitempty,gte=0"`
	DiscountAmount *int64    `json:"discount_amount,omitempty" validate:"omitempty,gte=0"`
	// EquipmentID optionally names a catalog item the booking is for.
	EquipmentID    *uint     `json:"equipment_id,omitempty" validate:"omitempty,gt=0"`
}

type Applicant struct {
	Name        string   `json:"name,omitempty" validate:"required,max=100"`
	CountryCode string   `json:"country_code,omitempty" validate:"max=8"`
	Phone       string   `json:"phone,omitempty" validate:"required,max=32"`
	Email       string   `json:"email,omitempty" validate:"required,email"`
	Messenger   string   `json:"messenger,omitempty" validate:"max=32"`
	MessengerID string   `json:"messenger_id,omitempty" validate:"max=100"`
	Hotel       string   `json:"hotel,omitempty" validate:"max=200"`
	ShuttleMode string   `json:"shuttle_mode,omitempty" validate:"max=32"`
	Shuttle     []string `json:"shuttle,omitempty" validate:"max=10"`
}

// Renter carries the raw form labels of one roster entry.
type Renter struct {
	Name         string  `json:"name,omitempty" validate:"required,max=100"`
	Age          int     `json:"age,omitempty" validate:"required,min=1,max=120"`
	Gender       string  `json:"gender,omitempty" validate:"required"`
	Height       float64 `json:"height,omitempty" validate:"required,gt=0,lt=300"`
	Weight       float64 `json:"weight,omitempty" validate:"required,gt=0,lt=500"`
	FootSize     string  `json:"foot_size,omitempty" validate:"required"`
	Level        string  `json:"level,omitempty" validate:"required"`
	SkiType      string  `json:"ski_type,omitempty" validate:"required"`
	BoardType    string  `json:"board_type,omitempty" validate:"required"`
	EquipType    string  `json:"equip_type,omitempty" validate:"required"`
	ClothingType string  `json:"clothing_type,omitempty"`
	Helmet       string  `json:"helmet,omitempty"`
	FastWear     string  `json:"fast_wear,omitempty" validate:"required"`
}

func (r Renter) Equipment() pricing.Equipment {
	return pricing.ParseEquipment(r.BoardType, r.EquipType, r.ClothingType, r.Helmet, r.FastWear)
}

func (r Renter) pricingRenter() pricing.Renter {
	return pricing.Renter{Age: r.Age, Equipment: r.Equipment()}
}

// Roster converts the form entries into pricing input.
func (req Request) Roster() []pricing.Renter {
	roster := make([]pricing.Renter, 0, len(req.Renters))
	for _, r := range req.Renters {
		roster = append(roster, r.pricingRenter())
	}
	return roster
}

func (req Request) Trip() pricing.Trip {
	return pricing.Trip{Pickup: pricing.Store(req.PickupStore), Return: pricing.Store(req.ReturnStore)}
}

// FieldError is one failed check, addressed by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid reservation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("store", func(fl validator.FieldLevel) bool {
		return pricing.Store(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the whole request and reports every failure at once. today
// is the calendar date bookings may start from.
func (req Request) Validate(today time.Time) error {
	verr := &ValidationError{}
	if err := validate.Struct(req); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(fieldPath(fe.Namespace()), message(fe))
		}
	}

	for i, r := range req.Renters {
		if pricing.ClassifyBundle(r.EquipType) == pricing.FullSet {
			continue
		}
		if r.ClothingType == "" {
			verr.add(fmt.Sprintf("renters[%d].clothing_type", i), "is required")
		}
		if r.Helmet == "" {
			verr.add(fmt.Sprintf("renters[%d].helmet", i), "is required")
		}
	}

	start, startErr := time.Parse(pricing.DateLayout, req.StartDate)
	end, endErr := time.Parse(pricing.DateLayout, req.EndDate)
	if startErr == nil && endErr == nil {
		if end.Before(start) {
			verr.add("end_date", "must not be before start_date")
		}
		y, m, d := today.Date()
		if start.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
			verr.add("start_date", "must not be in the past")
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must match " + fe.Param()
	case "store":
		return "must be one of " + storeNames()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " entries"
		}
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt", "gte":
		return "must be greater than " + orEqual(fe.Tag()) + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func orEqual(tag string) string {
	if tag == "gte" {
		return "or equal to "
	}
	return ""
}

func storeNames() string {
	names := make([]string, 0, len(pricing.Stores))
	for _, s := range pricing.Stores {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
