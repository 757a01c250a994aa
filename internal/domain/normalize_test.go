package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveItemCode(t *testing.T) {
	assert.Equal(t, "DORAAMOX1T", DeriveItemCode("Cholera/KMEDKIT01/KMEDMOD01/DORAAMOX1T"))
	assert.Equal(t, "KMEDMOD01", DeriveItemCode("Cholera/KMEDKIT01/KMEDMOD01/None"))
	assert.Equal(t, "KMEDKIT01", DeriveItemCode("Cholera/KMEDKIT01/None/None"))
	assert.Equal(t, "", DeriveItemCode("Cholera/None/None/None"))
	assert.Equal(t, "", DeriveItemCode("DORAAMOX1T"))
	assert.Equal(t, "", DeriveItemCode("a/b"))
	assert.Equal(t, "", DeriveItemCode(""))
}

func TestLotCode(t *testing.T) {
	assert.Equal(t, "X", LotCode(StockLot{Code: "X", Item: "Y"}))
	assert.Equal(t, "Y", LotCode(StockLot{Item: "Y", Module: "M"}))
	assert.Equal(t, "M", LotCode(StockLot{Item: "None", Module: "M", Kit: "K"}))
	assert.Equal(t, "K", LotCode(StockLot{Kit: "K"}))
	assert.Equal(t, "Z", LotCode(StockLot{UniqueID: "S/None/None/Z"}))
	assert.Equal(t, "", LotCode(StockLot{}))
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypeKit, DetectType("KMEDKIT01", "KIT, cholera, 100 patients"))
	assert.Equal(t, TypeKit, DetectType("KMEDKIT01", "kit with 4 modules"))
	assert.Equal(t, TypeModule, DetectType("KMEDMOD01", "module, dressing"))
	assert.Equal(t, TypeItem, DetectType("KMEDMOD01", "gloves"))
	assert.Equal(t, TypeItem, DetectType("DORAAMOX1T", "kit look-alike designation"))
	assert.Equal(t, TypeItem, DetectType("", ""))
}

func TestClassifyType(t *testing.T) {
	typeMap := map[string]ItemType{"KMEDKIT01": TypeKit}

	// the maintained map wins over the heuristic
	assert.Equal(t, TypeKit, ClassifyType("KMEDKIT01", "gloves", typeMap))
	// unmapped codes fall back to detection
	assert.Equal(t, TypeModule, ClassifyType("KMEDMOD01", "module, dressing", typeMap))
	assert.Equal(t, TypeItem, ClassifyType("DORAAMOX1T", "", nil))
}

func TestResolveScenarioName(t *testing.T) {
	idToName := map[string]string{"1": "Cholera"}
	names := map[string]struct{}{"Cholera": {}}

	assert.Equal(t, "Cholera", ResolveScenarioName("Cholera", idToName, names))
	assert.Equal(t, "Cholera", ResolveScenarioName("1", idToName, names))
	assert.Equal(t, "Unknown", ResolveScenarioName("Unknown", idToName, names))
	assert.Equal(t, "", ResolveScenarioName("", idToName, names))
}

func TestNormalizeManagementMode(t *testing.T) {
	assert.Equal(t, ModeOnShelf, NormalizeManagementMode("on_shelf"))
	assert.Equal(t, ModeOnShelf, NormalizeManagementMode(" On-Shelf "))
	assert.Equal(t, ModeInBox, NormalizeManagementMode("INBOX"))
	assert.Equal(t, "loose", NormalizeManagementMode(" loose "))
}

func TestReportFilterMatchers(t *testing.T) {
	assert.True(t, IsAll(""))
	assert.True(t, IsAll("All"))
	assert.True(t, IsAll(" all "))
	assert.False(t, IsAll("Kit"))

	f := ReportFilter{Type: "kit"}
	assert.True(t, f.MatchesType(TypeKit))
	assert.False(t, f.MatchesType(TypeItem))

	f = ReportFilter{ItemSearch: "amox"}
	assert.True(t, f.MatchesItemSearch("DORAAMOX1T", "amoxicillin 250mg", TypeItem))
	assert.True(t, f.MatchesItemSearch("X", "AMOXICILLIN", TypeItem))
	// search only ever matches items
	assert.False(t, f.MatchesItemSearch("KAMOX", "amoxicillin kit", TypeKit))
	assert.False(t, f.MatchesItemSearch("DINJGLUC5W", "glucose", TypeItem))
}

func TestMatchesTableSearch(t *testing.T) {
	f := ReportFilter{TableSearch: "  AmOx "}
	assert.True(t, f.MatchesTableSearch("DORAAMOX1T", ""))
	assert.True(t, f.MatchesTableSearch("X", "amoxicillin 250mg"))
	// unlike the item search, any row type can match
	assert.True(t, f.MatchesTableSearch("KAMOXKIT1", "amoxicillin kit"))
	assert.False(t, f.MatchesTableSearch("DINJGLUC5W", "glucose"))

	assert.True(t, ReportFilter{}.MatchesTableSearch("anything"))
}

func TestProjectSettingsHorizon(t *testing.T) {
	assert.Equal(t, 9, ProjectSettings{LeadTimeMonths: 3, CoverPeriodMonths: 4, BufferMonths: 2}.HorizonMonths())
	assert.Equal(t, 0, ProjectSettings{}.HorizonMonths())
	// each component clamps before summing
	assert.Equal(t, 26, ProjectSettings{LeadTimeMonths: 99, CoverPeriodMonths: -5, BufferMonths: 2}.HorizonMonths())
}
