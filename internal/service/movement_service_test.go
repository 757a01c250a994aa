package service

import (
	"context"
	"testing"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransactionRepo struct {
	txs       []domain.StockTransaction
	gotFilter repository.MovementFilter
}

func (s *stubTransactionRepo) Movements(_ context.Context, filter repository.MovementFilter) ([]domain.StockTransaction, error) {
	s.gotFilter = filter
	return s.txs, nil
}

func (s *stubTransactionRepo) ConsumptionByCode(context.Context, string, string) (map[string]int, error) {
	return nil, nil
}

type stubMasterRepo struct {
	items map[string]domain.Item
}

func (s *stubMasterRepo) ItemsByCode(context.Context, []string) (map[string]domain.Item, error) {
	return s.items, nil
}

func (s *stubMasterRepo) TypeMap(context.Context) (map[string]domain.ItemType, error) {
	return nil, nil
}

func (s *stubMasterRepo) SearchItems(context.Context, string, string, int) ([]domain.Item, error) {
	return nil, nil
}

func (s *stubMasterRepo) Scenarios(context.Context) ([]domain.Scenario, error) {
	return nil, nil
}

func newServiceDB(t *testing.T) *sqldb.DB {
	t.Helper()
	raw, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })
	db := sqldb.Open(raw)
	require.NoError(t, sqldb.InitSchema(context.Background(), db))
	return db
}

func TestConsumptionReport(t *testing.T) {
	txRepo := &stubTransactionRepo{txs: []domain.StockTransaction{
		{Date: "2026-01-10", Code: "DORAAMOX1T", QtyOut: 6, OutType: "Out MSF"},
		{Date: "2026-02-03", Code: "DORAAMOX1T", QtyOut: 4, OutType: "Out MSF"},
		{Date: "2026-02-15", Code: "DORAAMOX1T", QtyIn: 3, InType: "In Donation"},
		{Date: "not a date", Code: "DORAAMOX1T", QtyOut: 99, OutType: "Out MSF"},
		{Date: "2026-02-20", Code: "", QtyOut: 50, OutType: "Out MSF"},
	}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem},
	}}
	svc := NewMovementService(newServiceDB(t), txRepo, master)

	filter := domain.ReportFilter{DateFrom: "2026-01-01", DateTo: "2026-02-28"}

	t.Run("out direction drops receptions", func(t *testing.T) {
		out, err := svc.Consumption(context.Background(), filter, "out")
		require.NoError(t, err)

		assert.Equal(t, []string{"2026-01", "2026-02"}, out.Months)
		require.Len(t, out.Rows, 1)
		row := out.Rows[0]
		assert.Equal(t, "DORAAMOX1T", row.Code)
		assert.Equal(t, 10, row.TotalOut)
		assert.Equal(t, 0, row.TotalIn)
		assert.Equal(t, 6, row.PerMonthOut["2026-01"])
		assert.Equal(t, 4, row.PerMonthOut["2026-02"])
		assert.Equal(t, 4, out.TotalsOut["2026-02"])
		assert.Empty(t, out.TotalsIn)
	})

	t.Run("both directions bucket in and out", func(t *testing.T) {
		out, err := svc.Consumption(context.Background(), filter, "all")
		require.NoError(t, err)

		require.Len(t, out.Rows, 1)
		assert.Equal(t, 3, out.Rows[0].TotalIn)
		assert.Equal(t, 10, out.Rows[0].TotalOut)
		assert.Equal(t, 3, out.TotalsIn["2026-02"])
	})

	t.Run("open date bounds stretch to the ledger", func(t *testing.T) {
		out, err := svc.Consumption(context.Background(), domain.ReportFilter{}, "all")
		require.NoError(t, err)
		assert.Equal(t, []string{"2026-01", "2026-02"}, out.Months)
	})
}

func TestLoansReport(t *testing.T) {
	txRepo := &stubTransactionRepo{txs: []domain.StockTransaction{
		{Date: "2026-01-05", Code: "DORAAMOX1T", QtyOut: 10, OutType: "Loan", ThirdParty: "MoH", DocumentNumber: "LOAN-2"},
		{Date: "2026-01-20", Code: "DORAAMOX1T", QtyIn: 4, InType: "In Return of Loan", ThirdParty: "MoH", DocumentNumber: "LOAN-1"},
		{Date: "2026-02-01", Code: "DINJGLUC5W", QtyIn: 5, InType: "In Borrowing", ThirdParty: "NGO clinic"},
		{Date: "2026-02-02", Code: "DINJGLUC5W", QtyOut: 5, OutType: "Return of Borrowing", ThirdParty: "NGO clinic"},
	}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem},
		"DINJGLUC5W": {Code: "DINJGLUC5W", Description: "GLUCOSE 5%, bag", Type: domain.TypeItem},
	}}
	svc := NewMovementService(newServiceDB(t), txRepo, master)

	rows, err := svc.Loans(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, domain.LoanOutTypes, txRepo.gotFilter.OutTypes)
	assert.Equal(t, domain.LoanInTypes, txRepo.gotFilter.InTypes)

	require.Len(t, rows, 2)

	settled := rows[0]
	assert.Equal(t, "DINJGLUC5W", settled.Code)
	assert.Equal(t, 5, settled.QtyGiven)
	assert.Equal(t, 5, settled.QtyReceived)
	assert.Equal(t, 0, settled.Balance)
	assert.Equal(t, "Settled", settled.Status)

	open := rows[1]
	assert.Equal(t, "DORAAMOX1T", open.Code)
	assert.Equal(t, "MoH", open.ThirdParty)
	assert.Equal(t, 6, open.Balance)
	assert.Equal(t, "6 to receive", open.Status)
	assert.Equal(t, []string{"LOAN-1", "LOAN-2"}, open.Documents)

	// the table search matches the counterparty too
	rows, err = svc.Loans(context.Background(), domain.ReportFilter{TableSearch: "moh"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MoH", rows[0].ThirdParty)
}

func TestDonationsReport(t *testing.T) {
	txRepo := &stubTransactionRepo{txs: []domain.StockTransaction{
		{Date: "2026-01-05", Code: "DORAAMOX1T", QtyIn: 5, InType: "In Donation", ThirdParty: "UNICEF", Scenario: "Cholera", DocumentNumber: "DON-1"},
		{Date: "2026-01-05", Code: "DORAAMOX1T", QtyIn: 2, InType: "In Donation", ThirdParty: "UNICEF", Scenario: "None", DocumentNumber: "DON-2"},
		{Date: "2026-02-10", Code: "DORAAMOX1T", QtyOut: 3, OutType: "Out Donation", ThirdParty: "MoH"},
	}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem},
	}}
	svc := NewMovementService(newServiceDB(t), txRepo, master)

	rows, err := svc.Donations(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)

	require.Len(t, rows, 2)

	received := rows[0]
	assert.Equal(t, "2026-01-05", received.Date)
	assert.Equal(t, 7, received.InQty)
	assert.Equal(t, 0, received.OutQty)
	// "None" placeholders stay out of the joined sets
	assert.Equal(t, "Cholera", received.Scenarios)
	assert.Equal(t, "DON-1, DON-2", received.Documents)

	given := rows[1]
	assert.Equal(t, "MoH", given.ThirdParty)
	assert.Equal(t, 3, given.OutQty)
}
