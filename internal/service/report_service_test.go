package service

import (
	"context"
	"testing"

	"github.com/iseprep/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockStatementTableSearch(t *testing.T) {
	std := &stubStandardRepo{sums: map[string]int{"DORAAMOX1T": 10, "DINJGLUC5W": 8}}
	stock := &stubStockRepo{lots: []domain.StockLot{
		{UniqueID: "u1", Item: "DORAAMOX1T", FinalQty: 4},
	}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem},
		"DINJGLUC5W": {Code: "DINJGLUC5W", Description: "GLUCOSE 5%, bag", Type: domain.TypeItem},
	}}
	svc := NewReportService(newServiceDB(t), std, stock, &stubTransactionRepo{}, master,
		&stubSettingsRepo{}, nil, ReportDefaults{})

	out, err := svc.StockStatement(context.Background(), domain.ReportFilter{TableSearch: "amox"})
	require.NoError(t, err)

	// only the matching row is shown
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "DORAAMOX1T", out.Rows[0].Code)
	assert.Equal(t, 6, out.Rows[0].MissingQty)

	// but the totals keep covering the whole filtered set
	assert.Equal(t, 18, out.Totals.StandardQty)
	assert.Equal(t, 4, out.Totals.CurrentStock)
	assert.Equal(t, 14, out.Totals.MissingQty)
	assert.Equal(t, 0, out.Totals.OverStock)
}
