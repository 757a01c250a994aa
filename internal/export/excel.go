package export

import (
	"github.com/iseprep/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

func typeStyle(styles sheetStyles, t domain.ItemType) int {
	switch t {
	case domain.TypeKit:
		return styles.kit
	case domain.TypeModule:
		return styles.module
	}
	return 0
}

func saveWorkbook(f *excelize.File, path string) error {
	defer f.Close()
	return f.SaveAs(path)
}

// OrderReport writes the order sheet with the totals footer row.
func (e *Exporter) OrderReport(r *domain.OrderReport) (string, error) {
	path, err := e.filePath("order", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Order"
	header := []string{
		"Code", "Description", "Type", "Standard Qty", "Current Stock",
		"Qty Expiring", "Back Orders", "Loan Balance", "Planned Dons Give",
		"Dons Receive", "Qty Needed", "Qty To Order", "Rounded", "Pack",
		"Packs", "Price/Pack", "Amount", "Weight (kg)", "Volume (m3)", "Remarks",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range r.Rows {
		style := typeStyle(styles, row.Type)
		if row.MissingPrice && style == 0 {
			style = styles.shortage
		}
		values := []interface{}{
			row.Code, row.Description, string(row.Type), row.StandardQty,
			row.CurrentStock, row.QtyExpiring, row.BackOrders, row.LoanBalance,
			row.PlannedDonsGive, row.DonsReceive, row.QtyNeeded, row.QtyToOrder,
			row.QtyToOrderRound, row.PackSize, row.Packs,
			row.PricePerPack.InexactFloat64(), row.Amount.InexactFloat64(),
			row.WeightKg.InexactFloat64(), row.VolumeM3.InexactFloat64(),
			row.Remarks,
		}
		if err := setRow(f, sheet, i+2, values, style); err != nil {
			return "", err
		}
	}

	totals := make([]interface{}, len(header))
	totals[0] = "Totals"
	totals[16] = r.Totals.Amount.InexactFloat64()
	totals[17] = r.Totals.WeightKg.InexactFloat64()
	totals[18] = r.Totals.VolumeM3.InexactFloat64()
	if err := setRow(f, sheet, len(r.Rows)+2, totals, styles.header); err != nil {
		return "", err
	}

	return path, saveWorkbook(f, path)
}

// StockStatement writes the statement with shortage rows in red and
// overstock rows in green, kit and module fills taking precedence.
func (e *Exporter) StockStatement(r *domain.StatementReport) (string, error) {
	path, err := e.filePath("stock_statement", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Statement"
	header := []string{
		"Code", "Description", "Type", "Standard Qty", "Current Stock",
		"Qty Expiring", "Over Stock", "Missing Qty", "Pack", "Price/Pack",
		"Unit Price", "Weight/Pack (kg)", "Volume/Pack (dm3)",
		"Shelf Life (months)", "Account Code", "Remarks",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range r.Rows {
		style := typeStyle(styles, row.Type)
		if style == 0 {
			switch {
			case row.MissingQty > 0:
				style = styles.shortage
			case row.OverStock > 0:
				style = styles.overstock
			}
		}
		values := []interface{}{
			row.Code, row.Description, string(row.Type), row.StandardQty,
			row.CurrentStock, row.QtyExpiring, row.OverStock, row.MissingQty,
			row.PackSize, row.PricePerPack.InexactFloat64(),
			row.UnitPrice.InexactFloat64(), row.WeightPerPackKg.InexactFloat64(),
			row.VolumePerPack.InexactFloat64(), row.ShelfLifeMonths,
			row.AccountCode, row.Remarks,
		}
		if err := setRow(f, sheet, i+2, values, style); err != nil {
			return "", err
		}
	}

	totals := make([]interface{}, len(header))
	totals[0] = "Totals"
	totals[3] = r.Totals.StandardQty
	totals[4] = r.Totals.CurrentStock
	totals[5] = r.Totals.QtyExpiring
	totals[6] = r.Totals.OverStock
	totals[7] = r.Totals.MissingQty
	if err := setRow(f, sheet, len(r.Rows)+2, totals, styles.header); err != nil {
		return "", err
	}

	return path, saveWorkbook(f, path)
}

// StockSummary writes the per-slot summary rows.
func (e *Exporter) StockSummary(rows []domain.SummaryRow) (string, error) {
	path, err := e.filePath("stock_summary", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Summary"
	header := []string{
		"Scenario", "Kit", "Module", "Code", "Description", "Type",
		"Management", "Standard Qty", "Current Stock", "Coverage %",
		"Qty Expiring", "Earliest Expiry", "Over Stock", "Missing Qty", "Remarks",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range rows {
		var coverage interface{}
		if row.CoveragePct != nil {
			coverage = *row.CoveragePct
		}
		values := []interface{}{
			row.Scenario, row.KitNumber, row.ModuleNumber, row.Code,
			row.Description, string(row.Type), row.ManagementModes,
			row.StandardQty, row.CurrentStock, coverage, row.QtyExpiring,
			row.EarliestExpiry, row.OverStock, row.MissingQty, row.Remarks,
		}
		if err := setRow(f, sheet, i+2, values, typeStyle(styles, row.Type)); err != nil {
			return "", err
		}
	}

	return path, saveWorkbook(f, path)
}

// StockAvailability writes the lot-level availability rows, expired lots
// filled red.
func (e *Exporter) StockAvailability(rows []domain.AvailabilityRow) (string, error) {
	path, err := e.filePath("stock_availability", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Availability"
	header := []string{
		"Code", "Description", "Type", "Scenario", "Kit", "Module",
		"Management", "Qty", "Qty In", "Qty Out", "Discrepancy",
		"Expiry Date", "Months To Expiry", "AMC", "Comments",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range rows {
		style := typeStyle(styles, row.Type)
		if row.Expired {
			style = styles.shortage
		}
		var months interface{}
		if row.MonthsToExpiry != nil {
			months = *row.MonthsToExpiry
		}
		values := []interface{}{
			row.Code, row.Description, string(row.Type), row.Scenario,
			row.KitNumber, row.ModuleNumber, row.ManagementMode, row.Quantity,
			row.QtyIn, row.QtyOut, row.Discrepancy, row.ExpiryDate, months,
			row.AMC, row.Comments,
		}
		if err := setRow(f, sheet, i+2, values, style); err != nil {
			return "", err
		}
	}

	return path, saveWorkbook(f, path)
}

// ExpirySchedule writes the month-bucketed projection grid with a totals
// footer.
func (e *Exporter) ExpirySchedule(s *domain.ExpirySchedule) (string, error) {
	path, err := e.filePath("expiry_schedule", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Expiry"
	header := []string{"Code", "Description", "Comments", "AMC", "Expired", "This Month"}
	for _, col := range s.Columns {
		header = append(header, col.Label)
	}
	header = append(header, "Total")

	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range s.Rows {
		values := []interface{}{
			row.Code, row.Description, row.Comments, row.AMC,
			row.ExpiredQty, row.ThisMonthQty,
		}
		for _, col := range s.Columns {
			values = append(values, row.Projections[col.Key])
		}
		values = append(values, row.RowTotal)
		if err := setRow(f, sheet, i+2, values, 0); err != nil {
			return "", err
		}
	}

	totals := []interface{}{"Totals", "", "", s.AMCTotal, s.ExpiredTotal, s.ThisMonthTotal}
	for _, col := range s.Columns {
		totals = append(totals, s.ColumnTotals[col.Key])
	}
	totals = append(totals, s.GrandTotal)
	if err := setRow(f, sheet, len(s.Rows)+2, totals, styles.header); err != nil {
		return "", err
	}

	return path, saveWorkbook(f, path)
}

// Consumption writes the per-code monthly movement grid. In and out
// quantities share a column pair per month.
func (e *Exporter) Consumption(r *domain.ConsumptionReport) (string, error) {
	path, err := e.filePath("consumption", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Consumption"
	header := []string{"Code", "Description", "Type", "Scenario", "Kit", "Module"}
	for _, m := range r.Months {
		header = append(header, m+" In", m+" Out")
	}
	header = append(header, "Total In", "Total Out")

	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range r.Rows {
		values := []interface{}{
			row.Code, row.Description, string(row.Type), row.Scenario,
			row.KitNumber, row.ModuleNumber,
		}
		for _, m := range r.Months {
			values = append(values, row.PerMonthIn[m], row.PerMonthOut[m])
		}
		values = append(values, row.TotalIn, row.TotalOut)
		if err := setRow(f, sheet, i+2, values, typeStyle(styles, row.Type)); err != nil {
			return "", err
		}
	}

	totals := []interface{}{"Totals", "", "", "", "", ""}
	for _, m := range r.Months {
		totals = append(totals, r.TotalsIn[m], r.TotalsOut[m])
	}
	if err := setRow(f, sheet, len(r.Rows)+2, totals, styles.header); err != nil {
		return "", err
	}

	return path, saveWorkbook(f, path)
}

// Loans writes the netted loan ledger.
func (e *Exporter) Loans(rows []domain.LoanRow) (string, error) {
	path, err := e.filePath("loans", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Loans"
	header := []string{
		"Code", "Description", "Type", "Third Party", "Qty Given",
		"Qty Received", "Balance", "Status", "Documents",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range rows {
		style := typeStyle(styles, row.Type)
		if row.Balance != 0 && style == 0 {
			style = styles.shortage
		}
		values := []interface{}{
			row.Code, row.Description, string(row.Type), row.ThirdParty,
			row.QtyGiven, row.QtyReceived, row.Balance, row.Status,
			joinStrings(row.Documents),
		}
		if err := setRow(f, sheet, i+2, values, style); err != nil {
			return "", err
		}
	}

	return path, saveWorkbook(f, path)
}

// Donations writes the grouped donation movements.
func (e *Exporter) Donations(rows []domain.DonationRow) (string, error) {
	path, err := e.filePath("donations", "xlsx")
	if err != nil {
		return "", err
	}

	const sheet = "Donations"
	header := []string{
		"Date", "Code", "Description", "Type", "Third Party", "In Qty",
		"Out Qty", "Scenarios", "Kits", "Modules", "Documents",
		"Expiry Dates", "Remarks",
	}
	f, styles, err := newWorkbook(sheet, header)
	if err != nil {
		return "", err
	}

	for i, row := range rows {
		values := []interface{}{
			row.Date, row.Code, row.Description, string(row.Type),
			row.ThirdParty, row.InQty, row.OutQty, row.Scenarios, row.Kits,
			row.Modules, row.Documents, row.ExpiryDates, row.Remarks,
		}
		if err := setRow(f, sheet, i+2, values, typeStyle(styles, row.Type)); err != nil {
			return "", err
		}
	}

	return path, saveWorkbook(f, path)
}
