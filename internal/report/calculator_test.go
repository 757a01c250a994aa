package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestComputeOrder(t *testing.T) {
	t.Run("need clamps at zero", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{StandardQty: 10, CurrentStock: 50})
		assert.Equal(t, 0, m.QtyNeeded)
		assert.Equal(t, 0, m.QtyToOrder)
	})

	t.Run("expiring stock raises the need", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{StandardQty: 100, CurrentStock: 40, QtyExpiring: 10})
		assert.Equal(t, 70, m.QtyNeeded)
	})

	t.Run("back orders, loans and donations net against the need", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{
			StandardQty:     100,
			CurrentStock:    40,
			QtyExpiring:     10,
			BackOrders:      20,
			LoanBalance:     5,
			PlannedDonsGive: 8,
			DonsReceive:     3,
		})
		// 100 - 40 + 10 - 20 - 5 + 8 - 3
		assert.Equal(t, 50, m.QtyNeeded)
	})

	t.Run("rounds up to whole packs", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{
			StandardQty:  100,
			CurrentStock: 40,
			PackSize:     25,
			PricePerPack: decimal.NewFromFloat(12.50),
		})
		assert.Equal(t, 60, m.QtyNeeded)
		assert.Equal(t, 60, m.QtyToOrder)
		assert.Equal(t, 3, m.Packs)
		assert.Equal(t, 75, m.QtyToOrderRound)
		assert.True(t, decimal.NewFromFloat(37.50).Equal(m.Amount))
	})

	t.Run("override pins the order quantity but not the need", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{
			StandardQty:  100,
			CurrentStock: 40,
			QtyToOrder:   intPtr(10),
			PackSize:     25,
		})
		assert.Equal(t, 60, m.QtyNeeded)
		assert.Equal(t, 10, m.QtyToOrder)
		assert.Equal(t, 1, m.Packs)
		assert.Equal(t, 25, m.QtyToOrderRound)
	})

	t.Run("weight and volume derive from packs", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{
			StandardQty:      30,
			PackSize:         10,
			PricePerPack:     decimal.NewFromInt(5),
			WeightPerPackKg:  decimal.NewFromFloat(1.2),
			VolumePerPackDm3: decimal.NewFromInt(500),
		})
		assert.Equal(t, 3, m.Packs)
		assert.True(t, decimal.NewFromFloat(3.6).Equal(m.WeightKg), m.WeightKg.String())
		assert.True(t, decimal.NewFromFloat(1.5).Equal(m.VolumeM3), m.VolumeM3.String())
	})

	t.Run("zero pack size yields no packs or costing", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{
			StandardQty:  30,
			PricePerPack: decimal.NewFromInt(5),
		})
		assert.Equal(t, 30, m.QtyToOrder)
		assert.Equal(t, 30, m.QtyToOrderRound)
		assert.Equal(t, 0, m.Packs)
		assert.True(t, m.Amount.IsZero())
		assert.True(t, m.WeightKg.IsZero())
		assert.True(t, m.VolumeM3.IsZero())
	})

	t.Run("zero price flags missing price", func(t *testing.T) {
		m := ComputeOrder(OrderInputs{StandardQty: 10, PackSize: 5})
		assert.True(t, m.MissingPrice)

		m = ComputeOrder(OrderInputs{StandardQty: 10, PackSize: 5, PricePerPack: decimal.NewFromInt(1)})
		assert.False(t, m.MissingPrice)
	})
}
