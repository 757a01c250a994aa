package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/report"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/rs/zerolog/log"
)

// MovementService reads the transaction ledger into the consumption,
// loan and donation reports.
type MovementService struct {
	db     *sqldb.DB
	tx     repository.TransactionRepository
	master repository.MasterRepository
}

func NewMovementService(db *sqldb.DB, tx repository.TransactionRepository, master repository.MasterRepository) *MovementService {
	return &MovementService{db: db, tx: tx, master: master}
}

// Consumption buckets ledger movements per code and calendar month.
// Direction narrows the report to receptions ("in"), issues ("out") or
// both (anything else). An open date bound stretches to the data.
func (s *MovementService) Consumption(ctx context.Context, filter domain.ReportFilter, direction string) (*domain.ConsumptionReport, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	txs, err := s.tx.Movements(ctx, repository.MovementFilter{
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
		Scenario:       filter.Scenario,
		DocumentNumber: filter.DocumentNumber,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.master.ItemsByCode(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("consumption: item metadata read failed")
		items = map[string]domain.Item{}
	}

	dateFrom, dateTo := filter.DateFrom, filter.DateTo
	if dateFrom == "" || dateTo == "" {
		min, max := dateSpan(txs)
		if dateFrom == "" {
			dateFrom = min
		}
		if dateTo == "" {
			dateTo = max
		}
	}
	months := report.MonthKeys(dateFrom, dateTo)
	monthSet := make(map[string]struct{}, len(months))
	for _, m := range months {
		monthSet[m] = struct{}{}
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	wantIn := direction != "out"
	wantOut := direction != "in"

	rowsByCode := make(map[string]*domain.ConsumptionRow)
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		if !domain.IsAll(filter.Kit) && !strings.EqualFold(tx.Kit, filter.Kit) {
			continue
		}
		if !domain.IsAll(filter.Module) && !strings.EqualFold(tx.Module, filter.Module) {
			continue
		}

		item := items[tx.Code]
		codeType := item.Type
		if codeType == "" {
			codeType = domain.DetectType(tx.Code, item.Description)
		}
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(tx.Code, item.Description, codeType) {
			continue
		}
		if !filter.MatchesTableSearch(tx.Code, item.Description, tx.Scenario, tx.DocumentNumber) {
			continue
		}
		if wantIn && !domain.IsAll(filter.InType) && tx.QtyIn > 0 && !strings.EqualFold(tx.InType, filter.InType) {
			continue
		}
		if wantOut && !domain.IsAll(filter.OutType) && tx.QtyOut > 0 && !strings.EqualFold(tx.OutType, filter.OutType) {
			continue
		}

		date, ok := report.ParseISODate(tx.Date)
		if !ok {
			continue
		}
		monthKey := date.Format("2006-01")
		if _, ok := monthSet[monthKey]; !ok {
			continue
		}

		row, ok := rowsByCode[tx.Code]
		if !ok {
			row = &domain.ConsumptionRow{
				Code:           tx.Code,
				Description:    item.Description,
				Type:           codeType,
				Scenario:       tx.Scenario,
				KitNumber:      tx.Kit,
				ModuleNumber:   tx.Module,
				InType:         tx.InType,
				OutType:        tx.OutType,
				MovementType:   tx.MovementType,
				DocumentNumber: tx.DocumentNumber,
				PerMonthIn:     make(map[string]int),
				PerMonthOut:    make(map[string]int),
			}
			rowsByCode[tx.Code] = row
		}
		if wantIn && tx.QtyIn > 0 {
			row.PerMonthIn[monthKey] += tx.QtyIn
			row.TotalIn += tx.QtyIn
		}
		if wantOut && tx.QtyOut > 0 {
			row.PerMonthOut[monthKey] += tx.QtyOut
			row.TotalOut += tx.QtyOut
		}
	}

	out := &domain.ConsumptionReport{
		Months:    months,
		Rows:      make([]domain.ConsumptionRow, 0, len(rowsByCode)),
		TotalsIn:  make(map[string]int),
		TotalsOut: make(map[string]int),
	}
	for _, row := range rowsByCode {
		out.Rows = append(out.Rows, *row)
		for m, v := range row.PerMonthIn {
			out.TotalsIn[m] += v
		}
		for m, v := range row.PerMonthOut {
			out.TotalsOut[m] += v
		}
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Type != out.Rows[j].Type {
			return out.Rows[i].Type < out.Rows[j].Type
		}
		return out.Rows[i].Code < out.Rows[j].Code
	})

	return out, nil
}

func dateSpan(txs []domain.StockTransaction) (min, max string) {
	for _, tx := range txs {
		if _, ok := report.ParseISODate(tx.Date); !ok {
			continue
		}
		if min == "" || tx.Date < min {
			min = tx.Date
		}
		if max == "" || tx.Date > max {
			max = tx.Date
		}
	}
	return min, max
}

// Loans nets the loan ledger per (code, third party). A positive balance
// is stock still out with the counterparty.
func (s *MovementService) Loans(ctx context.Context, filter domain.ReportFilter) ([]domain.LoanRow, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	txs, err := s.tx.Movements(ctx, repository.MovementFilter{
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
		InTypes:        domain.LoanInTypes,
		OutTypes:       domain.LoanOutTypes,
		Scenario:       filter.Scenario,
		Kit:            filter.Kit,
		Module:         filter.Module,
		ThirdParty:     filter.ThirdParty,
		DocumentNumber: filter.DocumentNumber,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.master.ItemsByCode(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("loans: item metadata read failed")
		items = map[string]domain.Item{}
	}

	type loanKey struct {
		code       string
		thirdParty string
	}
	type loanAgg struct {
		given     int
		received  int
		documents map[string]struct{}
	}

	grouped := make(map[loanKey]*loanAgg)
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		key := loanKey{code: tx.Code, thirdParty: tx.ThirdParty}
		agg, ok := grouped[key]
		if !ok {
			agg = &loanAgg{documents: make(map[string]struct{})}
			grouped[key] = agg
		}
		if containsFold(domain.LoanOutTypes, tx.OutType) {
			agg.given += tx.QtyOut
		}
		if containsFold(domain.LoanInTypes, tx.InType) {
			agg.received += tx.QtyIn
		}
		if tx.DocumentNumber != "" {
			agg.documents[tx.DocumentNumber] = struct{}{}
		}
	}

	rows := make([]domain.LoanRow, 0, len(grouped))
	for key, agg := range grouped {
		item := items[key.code]
		codeType := item.Type
		if codeType == "" {
			codeType = domain.DetectType(key.code, item.Description)
		}
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(key.code, item.Description, codeType) {
			continue
		}
		if !filter.MatchesTableSearch(key.code, item.Description, key.thirdParty) {
			continue
		}

		balance := agg.given - agg.received
		var status string
		switch {
		case balance > 0:
			status = fmt.Sprintf("%d to receive", balance)
		case balance < 0:
			status = fmt.Sprintf("%d to give", -balance)
		default:
			status = "Settled"
		}

		docs := make([]string, 0, len(agg.documents))
		for d := range agg.documents {
			docs = append(docs, d)
		}
		sort.Strings(docs)

		rows = append(rows, domain.LoanRow{
			Code:        key.code,
			Description: item.Description,
			Type:        codeType,
			ThirdParty:  key.thirdParty,
			QtyGiven:    agg.given,
			QtyReceived: agg.received,
			Balance:     balance,
			Status:      status,
			Documents:   docs,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].ThirdParty < rows[j].ThirdParty
	})

	return rows, nil
}

// Donations groups donation movements by (date, code, third party), with
// the distinct scenario/kit/module/document values joined per group.
func (s *MovementService) Donations(ctx context.Context, filter domain.ReportFilter) ([]domain.DonationRow, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	txs, err := s.tx.Movements(ctx, repository.MovementFilter{
		DateFrom:       filter.DateFrom,
		DateTo:         filter.DateTo,
		InTypes:        []string{domain.InTypeDonation},
		OutTypes:       []string{domain.OutTypeDonation},
		Scenario:       filter.Scenario,
		Kit:            filter.Kit,
		Module:         filter.Module,
		ThirdParty:     filter.ThirdParty,
		DocumentNumber: filter.DocumentNumber,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.master.ItemsByCode(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("donations: item metadata read failed")
		items = map[string]domain.Item{}
	}

	type donationKey struct {
		date       string
		code       string
		thirdParty string
	}
	type donationAgg struct {
		in        int
		out       int
		scenarios map[string]struct{}
		kits      map[string]struct{}
		modules   map[string]struct{}
		documents map[string]struct{}
		expiries  map[string]struct{}
		remarks   map[string]struct{}
	}

	grouped := make(map[donationKey]*donationAgg)
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		key := donationKey{date: tx.Date, code: tx.Code, thirdParty: tx.ThirdParty}
		agg, ok := grouped[key]
		if !ok {
			agg = &donationAgg{
				scenarios: make(map[string]struct{}),
				kits:      make(map[string]struct{}),
				modules:   make(map[string]struct{}),
				documents: make(map[string]struct{}),
				expiries:  make(map[string]struct{}),
				remarks:   make(map[string]struct{}),
			}
			grouped[key] = agg
		}
		if strings.EqualFold(tx.InType, domain.InTypeDonation) {
			agg.in += tx.QtyIn
		}
		if strings.EqualFold(tx.OutType, domain.OutTypeDonation) {
			agg.out += tx.QtyOut
		}
		addNonEmpty(agg.scenarios, tx.Scenario)
		addNonEmpty(agg.kits, tx.Kit)
		addNonEmpty(agg.modules, tx.Module)
		addNonEmpty(agg.documents, tx.DocumentNumber)
		addNonEmpty(agg.expiries, tx.ExpiryDate)
		addNonEmpty(agg.remarks, tx.Remarks)
	}

	rows := make([]domain.DonationRow, 0, len(grouped))
	for key, agg := range grouped {
		item := items[key.code]
		codeType := item.Type
		if codeType == "" {
			codeType = domain.DetectType(key.code, item.Description)
		}
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(key.code, item.Description, codeType) {
			continue
		}
		if !filter.MatchesTableSearch(key.code, item.Description, key.thirdParty) {
			continue
		}

		rows = append(rows, domain.DonationRow{
			Date:        key.date,
			Code:        key.code,
			Description: item.Description,
			Type:        codeType,
			ThirdParty:  key.thirdParty,
			InQty:       agg.in,
			OutQty:      agg.out,
			Scenarios:   joinSet(agg.scenarios),
			Kits:        joinSet(agg.kits),
			Modules:     joinSet(agg.modules),
			Documents:   joinSet(agg.documents),
			ExpiryDates: joinSet(agg.expiries),
			Remarks:     joinSet(agg.remarks),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ThirdParty < b.ThirdParty
	})

	return rows, nil
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func addNonEmpty(set map[string]struct{}, v string) {
	v = strings.TrimSpace(v)
	if v != "" && !strings.EqualFold(v, "none") {
		set[v] = struct{}{}
	}
}

func joinSet(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
