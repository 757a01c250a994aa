package report

import (
	"github.com/shopspring/decimal"
)

// OrderInputs are the per-code figures feeding one order line. Override
// nil means "compute qty_to_order from the need"; a non-nil value pins it.
type OrderInputs struct {
	StandardQty     int
	CurrentStock    int
	QtyExpiring     int
	BackOrders      int
	LoanBalance     int
	PlannedDonsGive int
	DonsReceive     int
	QtyToOrder      *int

	PackSize         int
	PricePerPack     decimal.Decimal
	WeightPerPackKg  decimal.Decimal
	VolumePerPackDm3 decimal.Decimal
}

// OrderMetrics is the computed side of an order line.
type OrderMetrics struct {
	QtyNeeded       int
	QtyToOrder      int
	QtyToOrderRound int
	Packs           int
	Amount          decimal.Decimal
	WeightKg        decimal.Decimal
	VolumeM3        decimal.Decimal
	MissingPrice    bool
}

var dm3PerM3 = decimal.NewFromInt(1000)

// ComputeOrder derives the order quantity for one code.
//
// The need clamps at zero: expiring stock must be replaced, while stock
// already on back order, lent out, or inbound as donations reduces what
// is ordered. Ordering happens in whole packs; a code without a declared
// pack size cannot be costed per pack, so its amount, weight and volume
// stay zero.
func ComputeOrder(in OrderInputs) OrderMetrics {
	var m OrderMetrics

	needed := in.StandardQty - in.CurrentStock + in.QtyExpiring -
		in.BackOrders - in.LoanBalance + in.PlannedDonsGive - in.DonsReceive
	if needed < 0 {
		needed = 0
	}
	m.QtyNeeded = needed

	m.QtyToOrder = needed
	if in.QtyToOrder != nil {
		m.QtyToOrder = *in.QtyToOrder
	}

	if in.PackSize > 0 {
		m.Packs = (m.QtyToOrder + in.PackSize - 1) / in.PackSize
		m.QtyToOrderRound = m.Packs * in.PackSize

		packs := decimal.NewFromInt(int64(m.Packs))
		m.Amount = packs.Mul(in.PricePerPack)
		m.WeightKg = packs.Mul(in.WeightPerPackKg)
		m.VolumeM3 = packs.Mul(in.VolumePerPackDm3).Div(dm3PerM3)
	} else {
		m.QtyToOrderRound = m.QtyToOrder
		m.Amount = decimal.Zero
		m.WeightKg = decimal.Zero
		m.VolumeM3 = decimal.Zero
	}

	m.MissingPrice = in.PricePerPack.IsZero()

	return m
}
