package pricing

import "strings"

// ChildMaxAge is the oldest age priced from the child tables.
const ChildMaxAge = 13

type AgeGroup int

const (
	Adult AgeGroup = iota
	Child
)

func AgeGroupOf(age int) AgeGroup {
	if age <= ChildMaxAge {
		return Child
	}
	return Adult
}

func (g AgeGroup) String() string {
	if g == Child {
		return "child"
	}
	return "adult"
}

// Label is the display name used on booking summaries.
func (g AgeGroup) Label() string {
	if g == Child {
		return "兒童"
	}
	return "成人"
}

type BoardCategory int

const (
	Standard BoardCategory = iota
	Advanced
	Powder
)

func (b BoardCategory) String() string {
	switch b {
	case Advanced:
		return "advanced"
	case Powder:
		return "powder"
	default:
		return "standard"
	}
}

func (b BoardCategory) label() string {
	switch b {
	case Advanced:
		return "進階"
	case Powder:
		return "粉雪"
	default:
		return "標準"
	}
}

type Bundle int

const (
	FullSet Bundle = iota
	BootsSet
	BoardOnly
)

func (b Bundle) String() string {
	switch b {
	case FullSet:
		return "full_set"
	case BootsSet:
		return "boots_set"
	default:
		return "board_only"
	}
}

// Label names the main equipment line item, e.g. "進階板靴組".
func (b Bundle) Label(board BoardCategory) string {
	switch b {
	case FullSet:
		return board.label() + "大全配"
	case BootsSet:
		return board.label() + "板靴組"
	default:
		return board.label() + "僅租雪板"
	}
}

type Clothing int

const (
	ClothingNone Clothing = iota
	ClothingFullSuit
	ClothingJacket
	ClothingPants
)

func (c Clothing) String() string {
	switch c {
	case ClothingFullSuit:
		return "full_suit"
	case ClothingJacket:
		return "jacket"
	case ClothingPants:
		return "pants"
	default:
		return "none"
	}
}

// Raw labels offered by the reservation form.
const (
	LabelFullSet   = "大全配 (板+靴+雪衣&雪褲+安全帽)"
	LabelBootsSet  = "板+靴"
	LabelBoardOnly = "僅租雪板"

	LabelStandardBoard = "一般標準板"
	LabelAdvancedBoard = "進階板(紅線順滑)"
	LabelPowderBoard   = "粉雪板(全山滑行)"

	LabelClothingJacket   = "單租雪衣"
	LabelClothingPants    = "單租雪褲"
	LabelClothingFullSuit = "租一整套(雪衣及雪褲)"

	LabelYes = "是"
	LabelNo  = "否"
)

// ClassifyBundle maps an equipment-type label onto a bundle. Anything that is
// neither a full set nor board-plus-boots is priced as board only.
func ClassifyBundle(label string) Bundle {
	switch {
	case strings.Contains(label, "大全配") || label == "full_set":
		return FullSet
	case strings.Contains(label, "板+靴") || strings.Contains(label, "板靴組") || label == "boots_set":
		return BootsSet
	default:
		return BoardOnly
	}
}

// ClassifyBoard maps a board-type label onto a category; powder wins over
// advanced when a label mentions both.
func ClassifyBoard(label string) BoardCategory {
	category := Standard
	if strings.Contains(label, "進階") || label == "advanced" {
		category = Advanced
	}
	if strings.Contains(label, "粉雪") || label == "powder" {
		category = Powder
	}
	return category
}

// ClassifyClothing matches clothing labels exactly; unknown labels rent nothing.
func ClassifyClothing(label string) Clothing {
	switch label {
	case LabelClothingFullSuit, "full_suit":
		return ClothingFullSuit
	case LabelClothingJacket, "jacket":
		return ClothingJacket
	case LabelClothingPants, "pants":
		return ClothingPants
	default:
		return ClothingNone
	}
}

func YesNo(label string) bool {
	return label == LabelYes || strings.EqualFold(label, "yes")
}

// Equipment is the classified form of one renter's selections.
type Equipment struct {
	Board    BoardCategory
	Bundle   Bundle
	Clothing Clothing
	Helmet   bool
	FastWear bool
}

// ParseEquipment classifies the raw form labels. A full set already contains
// clothing and a helmet, so those selections are dropped.
func ParseEquipment(board, bundle, clothing, helmet, fastWear string) Equipment {
	eq := Equipment{
		Board:    ClassifyBoard(board),
		Bundle:   ClassifyBundle(bundle),
		Clothing: ClassifyClothing(clothing),
		Helmet:   YesNo(helmet),
		FastWear: YesNo(fastWear),
	}
	return eq.normalized()
}

func (e Equipment) normalized() Equipment {
	if e.Bundle == FullSet {
		e.Clothing = ClothingNone
		e.Helmet = false
	}
	return e
}

type Store string

const (
	Furano    Store = "富良野店"
	Asahikawa Store = "旭川店"
)

var Stores = []Store{Furano, Asahikawa}

func (s Store) Valid() bool {
	for _, known := range Stores {
		if s == known {
			return true
		}
	}
	return false
}

// Trip holds the pickup and return locations of a booking.
type Trip struct {
	Pickup Store
	Return Store
}

// CrossStore reports whether equipment is returned to a different store.
func (t Trip) CrossStore() bool {
	return t.Pickup != "" && t.Return != "" && t.Pickup != t.Return
}
