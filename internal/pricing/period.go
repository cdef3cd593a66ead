package pricing

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var ErrInvalidPeriod = errors.New("end date is before start date")

// RentalPeriod is an inclusive range of calendar dates.
type RentalPeriod struct {
	Start time.Time
	End   time.Time
}

func ParsePeriod(start, end string) (RentalPeriod, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return RentalPeriod{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return RentalPeriod{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return RentalPeriod{}, ErrInvalidPeriod
	}
	return RentalPeriod{Start: s, End: e}, nil
}

// Days counts both the first and the last day; it is never below 1.
func (p RentalPeriod) Days() int {
	days := int(civil(p.End).Sub(civil(p.Start))/(24*time.Hour)) + 1
	if days < 1 {
		return 1
	}
	return days
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
