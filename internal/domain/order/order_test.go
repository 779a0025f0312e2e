package order

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	o, err := NewOrder("MP20260201000001", "0000000001", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Header{
		ProjectID: "PRJ00000001",
		Band: billing.Band{
			Lower:        decimal.NewFromInt(140),
			Upper:        decimal.NewFromInt(180),
			BaseFee:      600000,
			ShortageRate: 3000,
			ExcessRate:   3500,
		},
	})
	require.NoError(t, err)
	return o
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func publishedOrder(t *testing.T) *Order {
	o := createTestOrder(t)
	require.NoError(t, o.Publish("orders/"+o.ID+"/abc.pdf"))
	return o
}

// ============================================
// Status Tests
// ============================================

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		{StatusDraft, StatusUnconfirmed, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusConfirming, false},
		{StatusUnconfirmed, StatusConfirming, true},
		{StatusUnconfirmed, StatusApproved, true},
		{StatusUnconfirmed, StatusDraft, false},
		{StatusConfirming, StatusApproved, true},
		{StatusConfirming, StatusUnconfirmed, false},
		{StatusApproved, StatusDraft, false},
		{StatusApproved, StatusApproved, false},
		{StatusReceived, StatusApproved, false},
		// nothing reaches RECEIVED
		{StatusUnconfirmed, StatusReceived, false},
		{StatusConfirming, StatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("SHIPPED").IsValid())
}

// ============================================
// Order Tests
// ============================================

func TestNewOrder(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o := createTestOrder(t)
		assert.Equal(t, StatusDraft, o.Status)
		assert.Equal(t, DefaultDeliverable, o.DeliverableText)
		assert.Equal(t, 1, o.GetVersion())
		require.Len(t, o.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeOrderCreated, o.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects missing customer", func(t *testing.T) {
		_, err := NewOrder("MP20260201000001", "", time.Now(), Header{})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects inverted work period", func(t *testing.T) {
		_, err := NewOrder("MP20260201000001", "0000000001", time.Now(), Header{
			WorkStart: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			WorkEnd:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestOrder_Items(t *testing.T) {
	o := createTestOrder(t)

	full, err := o.AddItem(ItemInput{
		PersonName:   "山田 太郎",
		BaseFee:      600000,
		ActualHours:  decimal.NewFromInt(200),
		ShortageRate: 3000,
		ExcessRate:   3000,
	})
	require.NoError(t, err)
	assert.True(t, full.Effort.Equal(decimal.NewFromInt(1)))
	assert.True(t, full.LowerLimit.Equal(DefaultLowerLimit))
	assert.Equal(t, 1, full.Quantity)
	assert.Equal(t, int64(660000), full.Price)

	half, err := o.AddItem(ItemInput{PersonName: "佐藤 花子", Effort: dec(0.5), BaseFee: 600000})
	require.NoError(t, err)
	assert.Equal(t, int64(300000), half.Price, "no hours recorded, no band adjustment")

	summary := o.Summary()
	assert.Equal(t, int64(960000), summary.Subtotal)
	assert.Equal(t, int64(96000), summary.Tax)
	assert.Equal(t, int64(1056000), summary.Total)

	t.Run("update recomputes only that item", func(t *testing.T) {
		updated, err := o.UpdateItem(half.ID, ItemInput{
			PersonName:   "佐藤 花子",
			Effort:       dec(0.5),
			BaseFee:      600000,
			ActualHours:  decimal.NewFromInt(60),
			LowerLimit:   dec(70),
			UpperLimit:   dec(90),
			ShortageRate: 4000,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(260000), updated.Price)
		assert.Equal(t, int64(660000), o.Items[0].Price)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := o.UpdateItem(uuid.New(), ItemInput{PersonName: "x"})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.True(t, errors.Is(o.RemoveItem(uuid.New()), shared.ErrNotFound))
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := o.AddItem(ItemInput{ActualHours: decimal.NewFromInt(-1)})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		_, err = o.AddItem(ItemInput{PersonName: strings.Repeat("名", 65)})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		_, err = o.AddItem(ItemInput{PersonName: "x", Effort: dec(0)})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, o.RemoveItem(half.ID))
		assert.Len(t, o.Items, 1)
	})
}

func TestOrder_EditsRequireDraft(t *testing.T) {
	o := publishedOrder(t)

	_, err := o.AddItem(ItemInput{PersonName: "x"})
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.True(t, errors.Is(o.UpdateHeader(Header{}), shared.ErrInvalidTransition))
	assert.True(t, errors.Is(o.RemoveItem(uuid.New()), shared.ErrInvalidTransition))
}

func TestOrder_Publish(t *testing.T) {
	o := createTestOrder(t)
	o.ClearDomainEvents()

	require.NoError(t, o.Publish("orders/MP20260201000001/abc.pdf"))
	assert.Equal(t, StatusUnconfirmed, o.Status)
	assert.Equal(t, "orders/MP20260201000001/abc.pdf", o.OrderPDFKey)
	require.Len(t, o.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeOrderPublished, o.GetDomainEvents()[0].EventType())

	err := o.Publish("orders/MP20260201000001/def.pdf")
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.Equal(t, "orders/MP20260201000001/abc.pdf", o.OrderPDFKey)
}

func TestOrder_Acknowledge(t *testing.T) {
	t.Run("draft cannot be acknowledged", func(t *testing.T) {
		_, err := createTestOrder(t).Acknowledge()
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	})

	t.Run("unconfirmed moves to confirming once", func(t *testing.T) {
		o := publishedOrder(t)
		changed, err := o.Acknowledge()
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, StatusConfirming, o.Status)

		changed, err = o.Acknowledge()
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestOrder_Approve(t *testing.T) {
	t.Run("requires finalize", func(t *testing.T) {
		o := publishedOrder(t)
		assert.True(t, errors.Is(o.Approve("hash", "key"), shared.ErrInvalidTransition))
	})

	t.Run("draft cannot be finalized", func(t *testing.T) {
		o := createTestOrder(t)
		assert.True(t, errors.Is(o.Finalize(time.Now()), shared.ErrInvalidTransition))
	})

	for _, from := range ApprovableStatuses() {
		t.Run("from "+string(from), func(t *testing.T) {
			o := publishedOrder(t)
			o.Status = from
			o.ClearDomainEvents()

			at := time.Date(2026, 2, 10, 9, 30, 15, 500, time.UTC)
			require.NoError(t, o.Finalize(at))
			assert.Equal(t, at.Truncate(time.Second), *o.FinalizedAt)

			require.NoError(t, o.Approve("deadbeef", "acceptances/MP20260201000001/deadbeef.pdf"))
			assert.True(t, o.IsApproved())
			assert.Equal(t, "deadbeef", o.DocumentHash)

			events := o.GetDomainEvents()
			require.Len(t, events, 1)
			approved, ok := events[0].(*OrderApprovedEvent)
			require.True(t, ok)
			assert.Equal(t, from, approved.FromStatus)

			assert.True(t, errors.Is(o.Approve("other", "other"), shared.ErrInvalidTransition))
			assert.Equal(t, "deadbeef", o.DocumentHash)
		})
	}
}

func TestOrder_AttachSignature(t *testing.T) {
	o := publishedOrder(t)
	assert.True(t, errors.Is(o.AttachSignature(""), shared.ErrInvalidInput))
	require.NoError(t, o.AttachSignature("sig_0011aabb"))
	require.NoError(t, o.AttachSignature("sig_0011aabb"))
	assert.True(t, errors.Is(o.AttachSignature("sig_ffffffff"), shared.ErrInvalidTransition))
}

func TestOrder_Snapshot(t *testing.T) {
	o := createTestOrder(t)
	_, err := o.AddItem(ItemInput{PersonName: "山田 太郎", BaseFee: 500000})
	require.NoError(t, err)
	require.NoError(t, o.Publish("orders/x.pdf"))
	require.NoError(t, o.Finalize(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))

	snap := o.Snapshot(printing.Party{ID: "0000000001", Name: "株式会社サンプル"}, "基幹刷新", printing.CompanyInfo{})

	assert.Equal(t, o.ID, snap.OrderID)
	assert.Equal(t, "基幹刷新", snap.ProjectName)
	assert.Equal(t, printing.DefaultCompanyInfo().Name, snap.Company.Name)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(500000), snap.Total-snap.Tax)
	require.NotNil(t, snap.FinalizedAt)

	// the snapshot is detached from the aggregate
	*snap.FinalizedAt = time.Time{}
	assert.False(t, o.FinalizedAt.IsZero())
}

func TestOrder_UnnamedItem(t *testing.T) {
	o := createTestOrder(t)
	item, err := o.AddItem(ItemInput{BaseFee: 500000})
	require.NoError(t, err)
	assert.Empty(t, item.PersonName)
	assert.Equal(t, int64(500000), item.Price)

	snap := o.Snapshot(printing.Party{ID: "0000000001"}, "", printing.CompanyInfo{})
	require.Len(t, snap.Items, 1)
	assert.Equal(t, UnnamedItemLabel, snap.Items[0].PersonName)
}

func TestProject(t *testing.T) {
	p, err := NewProject("PRJ00000001", "  基幹刷新  ")
	require.NoError(t, err)
	assert.Equal(t, "基幹刷新", p.Name)

	assert.True(t, errors.Is(p.Rename(" "), shared.ErrInvalidInput))
	_, err = NewProject("", "x")
	assert.Error(t, err)
}
