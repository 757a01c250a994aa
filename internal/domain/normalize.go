package domain

import "strings"

// ResolveScenarioName maps a raw scenario value from stock rows to a
// scenario name. Legacy rows store either the name or the numeric id as
// text; anything unknown is passed through unchanged.
func ResolveScenarioName(raw string, idToName map[string]string, names map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	if _, ok := names[raw]; ok {
		return raw
	}
	if name, ok := idToName[raw]; ok && name != "" {
		return name
	}
	return raw
}

// DeriveItemCode extracts the effective code from a composite
// scenario/kit/module/item identifier: the right-most segment that is
// neither empty nor the literal "None". Returns "" when no segment
// qualifies or the identifier is not composite.
func DeriveItemCode(uniqueID string) string {
	if uniqueID == "" || !strings.Contains(uniqueID, "/") {
		return ""
	}
	parts := strings.Split(uniqueID, "/")
	if len(parts) < 4 {
		return ""
	}
	for i := 3; i >= 1; i-- {
		if p := parts[i]; p != "" && !strings.EqualFold(p, "None") {
			return p
		}
	}
	return ""
}

// LotCode picks the effective code for a stock lot: the explicit code
// column when present, else item > module > kit, else whatever can be
// recovered from the composite unique_id.
func LotCode(lot StockLot) string {
	if lot.Code != "" {
		return lot.Code
	}
	for _, v := range []string{lot.Item, lot.Module, lot.Kit} {
		if v != "" && !strings.EqualFold(v, "None") {
			return v
		}
	}
	return DeriveItemCode(lot.UniqueID)
}

// DetectType guesses the type of a code when the maintained type map has
// no entry. Codes starting with "K" lean Kit or Module depending on the
// designation text; everything else is an Item.
func DetectType(code, designation string) ItemType {
	code = strings.TrimSpace(code)
	if code == "" {
		return TypeItem
	}
	d := strings.ToLower(designation)
	if strings.HasPrefix(strings.ToUpper(code), "K") {
		if strings.HasPrefix(d, "kit") || strings.Contains(d, "modules") {
			return TypeKit
		}
		if strings.Contains(d, "module") {
			return TypeModule
		}
	}
	return TypeItem
}

// ClassifyType resolves a code's type from the maintained items_list type
// map, falling back to the heuristic detector.
func ClassifyType(code, designation string, typeMap map[string]ItemType) ItemType {
	if t, ok := typeMap[code]; ok && t != "" {
		return t
	}
	return DetectType(code, designation)
}
