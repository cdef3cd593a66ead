package pricing

// Money is an amount in whole yen.
type Money = int64

// Tier holds the prices for 1 to 5 days followed by the increment charged for
// every day beyond the fifth.
type Tier [6]Money

// Price returns the cost of renting for the given number of days.
func (t Tier) Price(days int) Money {
	if days < 1 {
		days = 1
	}
	idx := min(days, 5) - 1
	price := t[idx]
	if extra := days - 5; extra > 0 {
		price += t[5] * Money(extra)
	}
	return price
}

// Table is the full rate card. Main equipment is indexed by board category
// then bundle for adults; children have a single (standard) board table.
type Table struct {
	AdultMain      [3][3]Tier
	ChildMain      [3]Tier
	Boots          [2]Tier
	ClothingSuit   [2]Tier
	ClothingSingle [2]Tier
	Helmet         Tier
	FastWear       Tier
	CrossStore     Money
}

// MainTier picks the main equipment tier. Children are always priced from the
// standard board table regardless of the requested category.
func (t *Table) MainTier(group AgeGroup, board BoardCategory, bundle Bundle) Tier {
	if group == Child {
		return t.ChildMain[bundle]
	}
	return t.AdultMain[board][bundle]
}

func (t *Table) ClothingTier(group AgeGroup, c Clothing) (Tier, bool) {
	switch c {
	case ClothingFullSuit:
		return t.ClothingSuit[group], true
	case ClothingJacket, ClothingPants:
		return t.ClothingSingle[group], true
	default:
		return Tier{}, false
	}
}

// DefaultTable is the 2025-2026 season rate card.
var DefaultTable = Table{
	AdultMain: [3][3]Tier{
		Standard: {
			FullSet:   {12000, 18000, 23000, 28000, 33000, 4000},
			BootsSet:  {8000, 14000, 19000, 24000, 29000, 4000},
			BoardOnly: {6500, 11500, 16500, 21500, 26500, 4000},
		},
		Advanced: {
			FullSet:   {14000, 21500, 28000, 34500, 41000, 5000},
			BootsSet:  {10000, 17500, 24500, 31500, 37000, 5000},
			BoardOnly: {8500, 15000, 21500, 28000, 34500, 5000},
		},
		Powder: {
			FullSet:   {16500, 26000, 34000, 42000, 50000, 6500},
			BootsSet:  {12500, 22000, 30000, 38000, 46000, 6500},
			BoardOnly: {11000, 19000, 26500, 34000, 42000, 6500},
		},
	},
	ChildMain: [3]Tier{
		FullSet:   {9000, 13000, 16000, 19000, 22000, 3000},
		BootsSet:  {6000, 10000, 13000, 16000, 19000, 3000},
		BoardOnly: {5000, 8500, 11500, 14500, 17500, 3000},
	},
	Boots: [2]Tier{
		Adult: {3500, 5500, 7500, 9000, 10500, 1000},
		Child: {2800, 4400, 6000, 7200, 8400, 800},
	},
	ClothingSuit: [2]Tier{
		Adult: {5000, 9000, 10500, 12000, 14000, 1500},
		Child: {3000, 5000, 6000, 7000, 9500, 700},
	},
	ClothingSingle: [2]Tier{
		Adult: {3000, 5000, 6500, 8000, 9500, 700},
		Child: {2000, 3500, 4000, 4500, 5500, 400},
	},
	Helmet:     Tier{1500, 2500, 3500, 4000, 4500, 500},
	FastWear:   Tier{2000, 2000, 2000, 2000, 2000, 2000},
	CrossStore: 3000,
}
