package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardBand() billing.Band {
	return billing.Band{
		Lower:        decimal.NewFromInt(140),
		Upper:        decimal.NewFromInt(180),
		BaseFee:      100000,
		ShortageRate: 500,
		ExcessRate:   800,
	}
}

func createTestInvoice(t *testing.T) *Invoice {
	inv, err := NewInvoice("MP20260201000001", "0000000001", "2602001",
		time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC),
		Dates{IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, "開発部")
	require.NoError(t, err)
	return inv
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusIssued, true},
		{StatusDraft, StatusSent, false},
		{StatusIssued, StatusSent, true},
		{StatusIssued, StatusDraft, false},
		{StatusSent, StatusIssued, false},
		{StatusSent, StatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.False(t, StatusDraft.IsVisibleToPartner())
	assert.True(t, StatusSent.IsVisibleToPartner())
}

func TestNewInvoice(t *testing.T) {
	inv := createTestInvoice(t)
	assert.Equal(t, "MP2602001", inv.AcceptanceNo)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), inv.TargetMonth)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, int64(0), inv.TotalAmount)

	t.Run("deadline before issue date", func(t *testing.T) {
		deadline := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewInvoice("MP20260201000001", "0000000001", "2602002", time.Now(),
			Dates{IssueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), PaymentDeadline: &deadline}, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestInvoice_Items(t *testing.T) {
	inv := createTestInvoice(t)

	within, err := inv.AddItem(ItemInput{PersonName: "A", WorkTime: decimal.NewFromInt(180), Band: standardBand()})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), within.Subtotal)

	over, err := inv.AddItem(ItemInput{PersonName: "B", WorkTime: decimal.NewFromInt(200), Band: standardBand()})
	require.NoError(t, err)
	assert.Equal(t, int64(16000), over.ExcessAmount)
	assert.Equal(t, int64(116000), over.Subtotal)

	assert.Equal(t, int64(216000), inv.SubtotalAmount)
	assert.Equal(t, int64(21600), inv.TaxAmount)
	assert.Equal(t, int64(237600), inv.TotalAmount)

	t.Run("work time edit re-settles one line and re-aggregates", func(t *testing.T) {
		updated, err := inv.UpdateItem(over.ID, ItemInput{PersonName: "B", WorkTime: decimal.NewFromInt(100), Band: standardBand()})
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated.ExcessAmount)
		assert.Equal(t, int64(20000), updated.ShortageAmount)
		assert.Equal(t, int64(80000), updated.Subtotal)

		assert.Equal(t, int64(100000), inv.Items[0].Subtotal)
		assert.Equal(t, int64(180000), inv.SubtotalAmount)
		assert.Equal(t, billing.Totals(100000, 80000), inv.Summary())
	})

	t.Run("remove re-aggregates", func(t *testing.T) {
		require.NoError(t, inv.RemoveItem(within.ID))
		assert.Equal(t, int64(80000), inv.SubtotalAmount)
		assert.Equal(t, int64(8000), inv.TaxAmount)
		assert.Equal(t, int64(88000), inv.TotalAmount)
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.True(t, errors.Is(inv.RemoveItem(uuid.New()), shared.ErrNotFound))
	})

	t.Run("negative work time", func(t *testing.T) {
		_, err := inv.AddItem(ItemInput{WorkTime: decimal.NewFromInt(-1), Band: standardBand()})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestInvoice_TaxAppliedOnceToTheSum(t *testing.T) {
	inv := createTestInvoice(t)
	for i := 0; i < 3; i++ {
		_, err := inv.AddItem(ItemInput{Band: billing.Band{BaseFee: 5}})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(15), inv.SubtotalAmount)
	assert.Equal(t, int64(1), inv.TaxAmount)
}

func TestInvoice_Transitions(t *testing.T) {
	inv := createTestInvoice(t)
	assert.True(t, errors.Is(inv.Send(), shared.ErrInvalidTransition))

	require.NoError(t, inv.Issue())
	assert.Equal(t, StatusIssued, inv.Status)

	_, err := inv.AddItem(ItemInput{Band: standardBand()})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.True(t, errors.Is(inv.Issue(), shared.ErrInvalidTransition))

	require.NoError(t, inv.Send())
	assert.Equal(t, StatusSent, inv.Status)
	assert.True(t, errors.Is(inv.Send(), shared.ErrInvalidTransition))
}

func TestSeed(t *testing.T) {
	newOrder := func(t *testing.T) *order.Order {
		o, err := order.NewOrder("MP20260201000001", "0000000001", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), order.Header{
			WorkLead: "鈴木 一郎",
			Band: billing.Band{
				Lower:        decimal.NewFromInt(140),
				Upper:        decimal.NewFromInt(180),
				BaseFee:      550000,
				ShortageRate: 3000,
				ExcessRate:   3500,
			},
		})
		require.NoError(t, err)
		return o
	}

	t.Run("one line per order item", func(t *testing.T) {
		o := newOrder(t)
		_, err := o.AddItem(order.ItemInput{
			PersonName:  "山田 太郎",
			BaseFee:     600000,
			ActualHours: decimal.NewFromInt(200),
			ExcessRate:  3000,
		})
		require.NoError(t, err)
		half := decimal.NewFromFloat(0.5)
		_, err = o.AddItem(order.ItemInput{
			PersonName:  "佐藤 花子",
			Effort:      &half,
			BaseFee:     500000,
			ActualHours: decimal.NewFromInt(100),
			LowerLimit:  decPtr(0),
			UpperLimit:  decPtr(0),
		})
		require.NoError(t, err)

		inv := createTestInvoice(t)
		require.NoError(t, inv.Seed(o))
		require.Len(t, inv.Items, 2)

		first := inv.Items[0]
		assert.Equal(t, "山田 太郎", first.PersonName)
		assert.Equal(t, int64(600000), first.BaseFee)
		assert.Equal(t, int64(60000), first.ExcessAmount)
		assert.Equal(t, int64(660000), first.Subtotal)

		// zero item limits take the order band
		second := inv.Items[1]
		assert.Equal(t, int64(250000), second.BaseFee)
		assert.True(t, second.LowerLimit.Equal(decimal.NewFromInt(140)))
		assert.Equal(t, int64(3000), second.ShortageRate)
		assert.Equal(t, int64(120000), second.ShortageAmount)
		assert.Equal(t, int64(130000), second.Subtotal)

		assert.Equal(t, int64(790000), inv.SubtotalAmount)
		assert.Equal(t, int64(79000), inv.TaxAmount)
		assert.Equal(t, int64(869000), inv.TotalAmount)
	})

	t.Run("order without items seeds the order band", func(t *testing.T) {
		inputs := SeedInputs(newOrder(t))
		require.Len(t, inputs, 1)
		assert.Equal(t, "鈴木 一郎", inputs[0].PersonName)
		assert.Equal(t, int64(550000), inputs[0].Band.BaseFee)
	})
}

func TestInvoice_Snapshot(t *testing.T) {
	inv := createTestInvoice(t)
	_, err := inv.AddItem(ItemInput{PersonName: "A", WorkTime: decimal.NewFromInt(200), Band: standardBand()})
	require.NoError(t, err)

	snap := inv.Snapshot(printing.Party{Name: "株式会社サンプル"}, "基幹刷新", printing.CompanyInfo{Name: "株式会社テスト"})
	assert.Equal(t, "2602001", snap.InvoiceNo)
	assert.Equal(t, "MP2602001", snap.AcceptanceNo)
	assert.Equal(t, "株式会社テスト", snap.Company.Name)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(16000), snap.Items[0].ExcessAmount)
	assert.Equal(t, int64(127600), snap.Total)
}
