package domain

import "github.com/shopspring/decimal"

// Item is the master-data record for a kit, module or item code.
type Item struct {
	Code             string          `json:"code" db:"code"`
	Description      string          `json:"description" db:"description"`
	Type             ItemType        `json:"type" db:"type"`
	PackSize         int             `json:"pack_size" db:"pack_size"`
	PricePerPack     decimal.Decimal `json:"price_per_pack" db:"price_per_pack"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	WeightPerPackKg  decimal.Decimal `json:"weight_per_pack_kg" db:"weight_per_pack_kg"`
	VolumePerPackDm3 decimal.Decimal `json:"volume_per_pack_dm3" db:"volume_per_pack_dm3"`
	ShelfLifeMonths  int             `json:"shelf_life_months" db:"shelf_life_months"`
	Remarks          string          `json:"remarks" db:"remarks"`
	AccountCode      string          `json:"account_code" db:"account_code"`
}

// Scenario partitions stock and standard quantities within a project.
type Scenario struct {
	ScenarioID int64  `json:"scenario_id" db:"scenario_id"`
	Name       string `json:"name" db:"name"`
}

// StockLot is one signed-off quantity of an item at a given expiry date.
// Legacy databases store the code only inside the composite unique_id
// (scenario/kit/module/item), so Code may be empty here and derived later.
type StockLot struct {
	UniqueID       string `json:"unique_id" db:"unique_id"`
	Code           string `json:"code" db:"code"`
	Scenario       string `json:"scenario" db:"scenario"`
	Kit            string `json:"kit" db:"kit"`
	Module         string `json:"module" db:"module"`
	Item           string `json:"item" db:"item"`
	KitNumber      string `json:"kit_number" db:"kit_number"`
	ModuleNumber   string `json:"module_number" db:"module_number"`
	QtyIn          int    `json:"qty_in" db:"qty_in"`
	QtyOut         int    `json:"qty_out" db:"qty_out"`
	FinalQty       int    `json:"final_qty" db:"final_qty"`
	ExpDate        string `json:"exp_date" db:"exp_date"`
	ManagementMode string `json:"management_mode" db:"management_mode"`
	Discrepancy    int    `json:"discrepancy" db:"discrepancy"`
	Comments       string `json:"comments" db:"comments"`
}

// StockTransaction is one immutable ledger entry of the movement journal.
type StockTransaction struct {
	Date           string `json:"date" db:"date"`
	Time           string `json:"time" db:"time"`
	UniqueID       string `json:"unique_id" db:"unique_id"`
	Code           string `json:"code" db:"code"`
	Description    string `json:"description" db:"description"`
	ExpiryDate     string `json:"expiry_date" db:"expiry_date"`
	Scenario       string `json:"scenario" db:"scenario"`
	Kit            string `json:"kit" db:"kit"`
	Module         string `json:"module" db:"module"`
	QtyIn          int    `json:"qty_in" db:"qty_in"`
	InType         string `json:"in_type" db:"in_type"`
	QtyOut         int    `json:"qty_out" db:"qty_out"`
	OutType        string `json:"out_type" db:"out_type"`
	MovementType   string `json:"movement_type" db:"movement_type"`
	ThirdParty     string `json:"third_party" db:"third_party"`
	EndUser        string `json:"end_user" db:"end_user"`
	DocumentNumber string `json:"document_number" db:"document_number"`
	Remarks        string `json:"remarks" db:"remarks"`
}

// StandardQuantityEntry is one configured target quantity for a
// (scenario, kit, module, code) slot of the std_qty_helper snapshot.
type StandardQuantityEntry struct {
	Code     string `json:"code" db:"code"`
	Scenario string `json:"scenario" db:"scenario"`
	Kit      string `json:"kit" db:"kit"`
	Module   string `json:"module" db:"module"`
	Type     string `json:"type" db:"type"`
	StdQty   int    `json:"std_qty" db:"std_qty"`
}

// ProjectSettings drives the default expiry/order horizon.
type ProjectSettings struct {
	LeadTimeMonths    int `json:"lead_time_months" db:"lead_time_months"`
	CoverPeriodMonths int `json:"cover_period_months" db:"cover_period_months"`
	BufferMonths      int `json:"buffer_months" db:"buffer_months"`
}

// HorizonMonths is the recommended expiry horizon: the sum of the three
// period settings, each clamped to [0, 24] before summing.
func (p ProjectSettings) HorizonMonths() int {
	return clampMonths(p.LeadTimeMonths) + clampMonths(p.CoverPeriodMonths) + clampMonths(p.BufferMonths)
}

func clampMonths(v int) int {
	if v < 0 {
		return 0
	}
	if v > 24 {
		return 24
	}
	return v
}
