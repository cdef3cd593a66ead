// Package sheets forwards a flattened copy of each booking to the
// spreadsheet web app that the rental desk works from.
package sheets

import (
	"strings"
	"time"

	"github.com/gdg-garage/ski-rental-api/internal/models"
	"github.com/gdg-garage/ski-rental-api/internal/pricing"
)

// MaxRenters is the number of renter column groups the sheet has.
const MaxRenters = 10

type Payload struct {
	ReservationNumber string    `json:"reservation_number"`
	BookingDate       string    `json:"bookingDate"`
	RentalDate        string    `json:"rentalDate"`
	ReturnDate        string    `json:"returnDate"`
	PickupDate        string    `json:"pickup_date"`
	PickupTime        string    `json:"pickup_time"`
	PickupLocation    string    `json:"pickupLocation"`
	ReturnLocation    string    `json:"returnLocation"`
	RentalDays        int       `json:"rentalDays"`
	DifferentLocation bool      `json:"differentLocation"`
	Applicant         Applicant `json:"applicant"`
	Renters           []Renter  `json:"renters"`
	DiscountCode      string    `json:"discountCode"`
	OriginalAmount    int64     `json:"originalAmount"`
	DiscountAmount    int64     `json:"discountAmount"`
	TotalAmount       int64     `json:"totalAmount"`
	Note              string    `json:"note"`
}

type Applicant struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	MessagingApp   MessagingApp   `json:"messagingApp"`
	Hotel          string         `json:"hotel"`
	Transportation Transportation `json:"transportation"`
}

type MessagingApp struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type Transportation struct {
	Required bool     `json:"required"`
	Details  []string `json:"details"`
}

type Renter struct {
	Name           string  `json:"name"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	ShoeSize       string  `json:"shoeSize"`
	SkillLevel     string  `json:"skillLevel"`
	SkiType        string  `json:"skiType"`
	BoardType      string  `json:"boardType"`
	EquipmentType  string  `json:"equipmentType"`
	ClothingOption string  `json:"clothingOption"`
	Helmet         string  `json:"helmet"`
	FaseBoot       string  `json:"faseBoot"`
}

// ShuttleSeparator joins the shuttle details stored on a reservation.
const ShuttleSeparator = "\n"

// BuildPayload flattens a stored reservation with its renters. Stores left
// blank are reported as the main store.
func BuildPayload(res *models.Reservation, bookedOn time.Time) Payload {
	pickup := storeOrDefault(res.PickupStore)
	ret := storeOrDefault(res.ReturnStore)

	p := Payload{
		ReservationNumber: res.Number,
		BookingDate:       bookedOn.Format(pricing.DateLayout),
		RentalDate:        res.StartDate.Format(pricing.DateLayout),
		ReturnDate:        res.EndDate.Format(pricing.DateLayout),
		PickupDate:        res.PickupDate,
		PickupTime:        res.PickupTime,
		PickupLocation:    pickup,
		ReturnLocation:    ret,
		RentalDays:        res.RentalDays,
		DifferentLocation: pickup != ret,
		Applicant:         buildApplicant(res.Applicant),
		Renters:           make([]Renter, 0, min(len(res.Renters), MaxRenters)),
		DiscountCode:      res.DiscountCode,
		OriginalAmount:    res.OriginalAmount,
		DiscountAmount:    res.DiscountAmount,
		TotalAmount:       res.TotalAmount,
		Note:              res.Notes,
	}
	for i, r := range res.Renters {
		if i == MaxRenters {
			break
		}
		p.Renters = append(p.Renters, Renter{
			Name:           r.Name,
			Age:            r.Age,
			Gender:         r.Gender,
			Height:         r.Height,
			Weight:         r.Weight,
			ShoeSize:       r.FootSize,
			SkillLevel:     r.Level,
			SkiType:        r.SkiType,
			BoardType:      r.BoardType,
			EquipmentType:  r.EquipType,
			ClothingOption: r.ClothingType,
			Helmet:         yesNo(r.Helmet),
			FaseBoot:       yesNo(r.FastWear),
		})
	}
	return p
}

func buildApplicant(a models.Contact) Applicant {
	messenger := a.Messenger
	if messenger == "" {
		messenger = "Email"
	}
	messengerID := a.MessengerID
	if messengerID == "" {
		messengerID = a.Email
	}
	details := []string{}
	if a.Shuttle != "" {
		details = strings.Split(a.Shuttle, ShuttleSeparator)
	}
	return Applicant{
		Name:  a.Name,
		Phone: strings.TrimSpace(a.CountryCode + " " + a.Phone),
		Email: a.Email,
		MessagingApp: MessagingApp{
			Type: messenger,
			ID:   messengerID,
		},
		Hotel: a.Hotel,
		Transportation: Transportation{
			Required: a.ShuttleMode == "need",
			Details:  details,
		},
	}
}

func storeOrDefault(store string) string {
	if store == "" {
		return string(pricing.Furano)
	}
	return store
}

func yesNo(v bool) string {
	if v {
		return pricing.LabelYes
	}
	return pricing.LabelNo
}
