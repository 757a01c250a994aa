package domain

import "strings"

// ItemType classifies a code as Kit, Module or Item.
type ItemType string

const (
	TypeKit    ItemType = "Kit"
	TypeModule ItemType = "Module"
	TypeItem   ItemType = "Item"
)

// ParseItemType normalizes the free-form type strings found in legacy
// databases ("KIT", "kit", "Kit") to a canonical ItemType.
func ParseItemType(raw string) (ItemType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kit":
		return TypeKit, true
	case "module":
		return TypeModule, true
	case "item":
		return TypeItem, true
	}
	return "", false
}

// Movement reasons that participate in loan balances.
var (
	LoanOutTypes = []string{"Loan", "Return of Borrowing"}
	LoanInTypes  = []string{"In Borrowing", "In Return of Loan"}
)

// Canonical movement reasons used by the reports.
const (
	OutTypeConsumption = "Out MSF"
	InTypeDonation     = "In Donation"
	OutTypeDonation    = "Out Donation"
)

// Management modes for stock lots.
const (
	ModeOnShelf = "on-shelf"
	ModeInBox   = "in-box"
)

// NormalizeManagementMode collapses the spelling variants seen in legacy
// data (on_shelf / on-shelf / onshelf) to the canonical constants. Unknown
// values are returned trimmed but otherwise untouched.
func NormalizeManagementMode(raw string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""), "-", "")) {
	case "onshelf":
		return ModeOnShelf
	case "inbox":
		return ModeInBox
	}
	return strings.TrimSpace(raw)
}

// Locale selects which designation column item descriptions come from.
type Locale string

// DesignationColumn maps the locale to the items_list column holding the
// localized description, defaulting to English.
func (l Locale) DesignationColumn() string {
	switch strings.ToLower(string(l)) {
	case "fr":
		return "designation_fr"
	case "es", "sp":
		return "designation_sp"
	}
	return "designation_en"
}
