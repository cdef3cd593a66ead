package pricing

// Renter carries the fields of a roster entry that affect the price.
type Renter struct {
	Age       int
	Equipment Equipment
}

// Breakdown is the priced result for one renter.
type Breakdown struct {
	AgeGroup   AgeGroup `json:"-"`
	Group      string   `json:"group"`
	Item       string   `json:"item"`
	Main       Money    `json:"main"`
	Boots      Money    `json:"boots"`
	Clothing   Money    `json:"clothing"`
	Helmet     Money    `json:"helmet"`
	FastWear   Money    `json:"fast_wear"`
	CrossStore Money    `json:"cross_store"`
	Subtotal   Money    `json:"subtotal"`
}

// Quote is the undiscounted price of a whole booking.
type Quote struct {
	Days      int         `json:"days"`
	PerRenter []Breakdown `json:"per_renter"`
	Total     Money       `json:"total"`
}

type Engine struct {
	table Table
}

func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

var defaultEngine = NewEngine(DefaultTable)

// Compute prices a roster with the default rate card.
func Compute(period RentalPeriod, roster []Renter, trip Trip) Quote {
	return defaultEngine.Compute(period, roster, trip)
}

func (e *Engine) Compute(period RentalPeriod, roster []Renter, trip Trip) Quote {
	days := period.Days()
	quote := Quote{
		Days:      days,
		PerRenter: make([]Breakdown, 0, len(roster)),
	}
	cross := trip.CrossStore()
	for _, r := range roster {
		b := e.price(days, r, cross)
		quote.PerRenter = append(quote.PerRenter, b)
		quote.Total += b.Subtotal
	}
	return quote
}

func (e *Engine) price(days int, r Renter, cross bool) Breakdown {
	eq := r.Equipment.normalized()
	group := AgeGroupOf(r.Age)

	b := Breakdown{
		AgeGroup: group,
		Group:    group.Label(),
		Item:     eq.Bundle.Label(eq.Board),
		Main:     e.table.MainTier(group, eq.Board, eq.Bundle).Price(days),
	}
	// Boots stays zero: every bundle either includes boots or is board only.
	// Table.Boots is kept for a standalone boot rental.
	if tier, ok := e.table.ClothingTier(group, eq.Clothing); ok {
		b.Clothing = tier.Price(days)
	}
	if eq.Helmet {
		b.Helmet = e.table.Helmet.Price(days)
	}
	if eq.FastWear {
		b.FastWear = e.table.FastWear.Price(days)
	}
	if cross {
		b.CrossStore = e.table.CrossStore
	}
	b.Subtotal = b.Main + b.Boots + b.Clothing + b.Helmet + b.FastWear + b.CrossStore
	return b
}
