package domain

import "strings"

// ReportFilter carries the filter values of one report refresh. Empty or
// "All" means unfiltered for the dimension. Month values of 0 fall back to
// the configured defaults (or disable the feature, for AMC).
type ReportFilter struct {
	Scenario       string `json:"scenario" form:"scenario"`
	ManagementMode string `json:"management_mode" form:"management_mode"`
	Kit            string `json:"kit" form:"kit"`
	Module         string `json:"module" form:"module"`
	Type           string `json:"type" form:"type"`
	ItemSearch     string `json:"item_search" form:"item_search"`
	ExpiryMonths   int    `json:"expiry_months" form:"expiry_months"`
	AMCMonths      int    `json:"amc_months" form:"amc_months"`
	DateFrom       string `json:"date_from" form:"date_from"`
	DateTo         string `json:"date_to" form:"date_to"`
	ThirdParty     string `json:"third_party" form:"third_party"`
	DocumentNumber string `json:"document_number" form:"document_number"`
	InType         string `json:"in_type" form:"in_type"`
	OutType        string `json:"out_type" form:"out_type"`
	TableSearch    string `json:"table_search" form:"table_search"`
}

// IsAll reports whether a filter value means "no restriction".
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// MatchesType applies the type filter against a resolved item type.
func (f ReportFilter) MatchesType(t ItemType) bool {
	if IsAll(f.Type) {
		return true
	}
	want, ok := ParseItemType(f.Type)
	return ok && want == t
}

// MatchesItemSearch applies the item substring search: it only ever
// matches Item-type rows, case-insensitively against code and description.
func (f ReportFilter) MatchesItemSearch(code, description string, t ItemType) bool {
	needle := strings.TrimSpace(f.ItemSearch)
	if needle == "" {
		return true
	}
	if t != TypeItem {
		return false
	}
	needle = strings.ToLower(needle)
	return strings.Contains(strings.ToLower(code), needle) ||
		strings.Contains(strings.ToLower(description), needle)
}

// MatchesTableSearch applies the free-text table search against the
// given text columns of a row, case-insensitively. Unlike the item
// search it matches rows of any type.
func (f ReportFilter) MatchesTableSearch(values ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(f.TableSearch))
	if needle == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// OrderOverride holds the user-edited values of one order row. Nil fields
// mean "not overridden"; they live only for the current session and are
// merged into fresh aggregator output on every recompute.
type OrderOverride struct {
	BackOrders      *int    `json:"back_orders,omitempty"`
	LoanBalance     *int    `json:"loan_balance,omitempty"`
	PlannedDonsGive *int    `json:"planned_dons_give,omitempty"`
	DonsReceive     *int    `json:"dons_receive,omitempty"`
	QtyToOrder      *int    `json:"qty_to_order,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
}

// OrderOverrides maps item codes to their session-local edits.
type OrderOverrides map[string]OrderOverride
