package domain

import "github.com/shopspring/decimal"

// OrderRow is one line of the order engine: the computed need for a code
// together with the master-data derived pack, price, weight and volume.
type OrderRow struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Type            ItemType        `json:"type"`
	StandardQty     int             `json:"standard_qty"`
	CurrentStock    int             `json:"current_stock"`
	QtyExpiring     int             `json:"qty_expiring"`
	BackOrders      int             `json:"back_orders"`
	LoanBalance     int             `json:"loan_balance"`
	PlannedDonsGive int             `json:"planned_dons_give"`
	DonsReceive     int             `json:"dons_receive"`
	QtyNeeded       int             `json:"qty_needed"`
	QtyToOrder      int             `json:"qty_to_order"`
	QtyToOrderRound int             `json:"qty_to_order_rounded"`
	PackSize        int             `json:"pack_size"`
	Packs           int             `json:"packs"`
	PricePerPack    decimal.Decimal `json:"price_per_pack"`
	Amount          decimal.Decimal `json:"amount"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	VolumeM3        decimal.Decimal `json:"volume_m3"`
	Remarks         string          `json:"remarks"`
	MissingPrice    bool            `json:"missing_price"`
	Overridden      bool            `json:"overridden"`
}

// OrderTotals sums the money, weight and volume columns over the visible
// rows. MissingPriceCount flags how many rows contributed no amount because
// master data has no price for them.
type OrderTotals struct {
	Amount            decimal.Decimal `json:"amount"`
	WeightKg          decimal.Decimal `json:"weight_kg"`
	VolumeM3          decimal.Decimal `json:"volume_m3"`
	MissingPriceCount int             `json:"missing_price_count"`
}

// OrderReport is the full order engine output for one filter set.
type OrderReport struct {
	Rows          []OrderRow  `json:"rows"`
	Totals        OrderTotals `json:"totals"`
	CutoffDate    string      `json:"cutoff_date,omitempty"`
	HorizonMonths int         `json:"horizon_months"`
}

// StatementRow is one line of the stock statement: standard quantity vs
// current stock, with the shortage and surplus derived columns.
type StatementRow struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Type            ItemType        `json:"type"`
	StandardQty     int             `json:"standard_qty"`
	CurrentStock    int             `json:"current_stock"`
	QtyExpiring     int             `json:"qty_expiring"`
	OverStock       int             `json:"over_stock"`
	MissingQty      int             `json:"missing_qty"`
	PackSize        int             `json:"pack_size"`
	PricePerPack    decimal.Decimal `json:"price_per_pack"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	WeightPerPackKg decimal.Decimal `json:"weight_per_pack_kg"`
	VolumePerPack   decimal.Decimal `json:"volume_per_pack_dm3"`
	ShelfLifeMonths int             `json:"shelf_life_months"`
	Remarks         string          `json:"remarks"`
	AccountCode     string          `json:"account_code"`
}

// StatementTotals sums the quantity columns over every row passing the
// structured filters. The free-text table search narrows the visible
// rows only, so the totals keep describing the whole filtered set.
type StatementTotals struct {
	StandardQty  int `json:"standard_qty"`
	CurrentStock int `json:"current_stock"`
	QtyExpiring  int `json:"qty_expiring"`
	OverStock    int `json:"over_stock"`
	MissingQty   int `json:"missing_qty"`
}

// StatementReport is the stock statement output for one filter set.
type StatementReport struct {
	Rows          []StatementRow  `json:"rows"`
	Totals        StatementTotals `json:"totals"`
	CutoffDate    string          `json:"cutoff_date,omitempty"`
	HorizonMonths int             `json:"horizon_months"`
}

// SummaryRow is one (scenario, kit slot, module slot, code) line of the
// stock summary, with the collective standard quantity alongside live
// stock. CoveragePct is nil when no standard quantity is configured.
type SummaryRow struct {
	Scenario        string   `json:"scenario"`
	KitNumber       string   `json:"kit_number"`
	ModuleNumber    string   `json:"module_number"`
	Code            string   `json:"code"`
	Description     string   `json:"description"`
	Type            ItemType `json:"type"`
	ManagementModes string   `json:"management_modes"`
	StandardQty     int      `json:"standard_qty"`
	CurrentStock    int      `json:"current_stock"`
	CoveragePct     *float64 `json:"coverage_pct,omitempty"`
	QtyExpiring     int      `json:"qty_expiring"`
	EarliestExpiry  string   `json:"earliest_expiry,omitempty"`
	OverStock       int      `json:"over_stock"`
	MissingQty      int      `json:"missing_qty"`
	Remarks         string   `json:"remarks,omitempty"`
}

// AvailabilityRow is one live stock lot with its expiry posture and the
// item's average monthly consumption.
type AvailabilityRow struct {
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	Type           ItemType `json:"type"`
	Scenario       string   `json:"scenario"`
	KitNumber      string   `json:"kit_number"`
	ModuleNumber   string   `json:"module_number"`
	ManagementMode string   `json:"management_mode"`
	Quantity       int      `json:"quantity"`
	QtyIn          int      `json:"qty_in"`
	QtyOut         int      `json:"qty_out"`
	Discrepancy    int      `json:"discrepancy"`
	ExpiryDate     string   `json:"expiry_date,omitempty"`
	MonthsToExpiry *int     `json:"months_to_expiry,omitempty"`
	Expired        bool     `json:"expired"`
	AMC            float64  `json:"amc"`
	Comments       string   `json:"comments,omitempty"`
}

// ExpiryColumn is one month bucket of the expiry projection schedule.
type ExpiryColumn struct {
	Key   string `json:"key"`   // YYYY-MM
	Label string `json:"label"` // e.g. "Jan 2026"
}

// ExpiryRow projects, per code, how much of the stock expiring in each
// future month will remain unconsumed given the item's AMC. Quantities
// already expired or expiring this month are reported raw.
type ExpiryRow struct {
	Code         string         `json:"code"`
	Description  string         `json:"description"`
	Comments     string         `json:"comments,omitempty"`
	AMC          float64        `json:"amc"`
	ExpiredQty   int            `json:"expired_qty"`
	ThisMonthQty int            `json:"this_month_qty"`
	Projections  map[string]int `json:"projections"` // keyed by ExpiryColumn.Key
	RowTotal     int            `json:"row_total"`
}

// ExpirySchedule is the month-bucketed expiry projection report.
type ExpirySchedule struct {
	Columns        []ExpiryColumn `json:"columns"` // future months only, ascending
	Rows           []ExpiryRow    `json:"rows"`
	ColumnTotals   map[string]int `json:"column_totals"`
	ExpiredTotal   int            `json:"expired_total"`
	ThisMonthTotal int            `json:"this_month_total"`
	GrandTotal     int            `json:"grand_total"`
	AMCTotal       float64        `json:"amc_total"`
	AMCMonths      int            `json:"amc_months"`
	PeriodMonths   int            `json:"period_months"`
}

// ConsumptionRow is the per-code monthly movement breakdown over the
// report window.
type ConsumptionRow struct {
	Code           string         `json:"code"`
	Description    string         `json:"description"`
	Type           ItemType       `json:"type"`
	Scenario       string         `json:"scenario,omitempty"`
	KitNumber      string         `json:"kit_number,omitempty"`
	ModuleNumber   string         `json:"module_number,omitempty"`
	InType         string         `json:"in_type,omitempty"`
	OutType        string         `json:"out_type,omitempty"`
	MovementType   string         `json:"movement_type,omitempty"`
	DocumentNumber string         `json:"document_number,omitempty"`
	PerMonthIn     map[string]int `json:"per_month_in"`  // keyed YYYY-MM
	PerMonthOut    map[string]int `json:"per_month_out"` // keyed YYYY-MM
	TotalIn        int            `json:"total_in"`
	TotalOut       int            `json:"total_out"`
}

// ConsumptionReport covers a date window bucketed into calendar months.
type ConsumptionReport struct {
	Months    []string         `json:"months"` // YYYY-MM, ascending
	Rows      []ConsumptionRow `json:"rows"`
	TotalsIn  map[string]int   `json:"totals_in"`
	TotalsOut map[string]int   `json:"totals_out"`
}

// LoanRow is the per-code, per-counterparty loan ledger line. Balance is
// quantity given minus received; positive means the counterparty still
// owes stock back.
type LoanRow struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Type        ItemType `json:"type"`
	ThirdParty  string   `json:"third_party"`
	QtyGiven    int      `json:"qty_given"`
	QtyReceived int      `json:"qty_received"`
	Balance     int      `json:"balance"`
	Status      string   `json:"status"`
	Documents   []string `json:"documents,omitempty"`
}

// DonationRow groups donation movements by (date, code, third party);
// the list columns aggregate the distinct values seen in the group.
type DonationRow struct {
	Date        string   `json:"date"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Type        ItemType `json:"type"`
	ThirdParty  string   `json:"third_party"`
	InQty       int      `json:"in_donations"`
	OutQty      int      `json:"out_donations"`
	Scenarios   string   `json:"scenarios,omitempty"`
	Kits        string   `json:"kits,omitempty"`
	Modules     string   `json:"modules,omitempty"`
	Documents   string   `json:"documents,omitempty"`
	ExpiryDates string   `json:"expiry_dates,omitempty"`
	Remarks     string   `json:"remarks,omitempty"`
}

// SnapshotRefreshSummary reports the row counts after rebuilding the
// standard-quantity snapshot tables.
type SnapshotRefreshSummary struct {
	StdListCombinedRows int    `json:"std_list_combined_rows"`
	StdQtyHelperRows    int    `json:"std_qty_helper_rows"`
	Timestamp           string `json:"timestamp"`
}
