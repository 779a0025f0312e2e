package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, orderID, invoiceNo string) *invoice.Invoice {
	t.Helper()

	deadline := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	inv, err := invoice.NewInvoice(orderID, "0000000001", invoiceNo,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		invoice.Dates{IssueDate: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), PaymentDeadline: &deadline},
		"開発部")
	require.NoError(t, err)

	band := billing.Band{
		Lower:        decimal.NewFromInt(140),
		Upper:        decimal.NewFromInt(180),
		BaseFee:      600000,
		ShortageRate: 4000,
		ExcessRate:   3500,
	}
	_, err = inv.AddItem(invoice.ItemInput{PersonName: "佐藤", WorkTime: decimal.RequireFromString("190.5"), Band: band})
	require.NoError(t, err)
	_, err = inv.AddItem(invoice.ItemInput{PersonName: "鈴木", WorkTime: decimal.NewFromInt(120), Band: band})
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func TestGormInvoiceRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(setupTestDB(t))

	inv := newTestInvoice(t, "MP20260201000001", "2602001")
	require.NoError(t, repo.Create(ctx, inv))

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "2602001", found.InvoiceNo)
	assert.Equal(t, "MP2602001", found.AcceptanceNo)
	assert.Equal(t, invoice.StatusDraft, found.Status)
	assert.Equal(t, inv.SubtotalAmount, found.SubtotalAmount)
	assert.Equal(t, inv.TaxAmount, found.TaxAmount)
	assert.Equal(t, inv.TotalAmount, found.TotalAmount)
	assert.Nil(t, found.AcceptanceDate)
	require.NotNil(t, found.PaymentDeadline)
	assert.Equal(t, "2026-03-31", found.PaymentDeadline.Format(time.DateOnly))

	require.Len(t, found.Items, 2)
	byName := map[string]invoice.Item{}
	for _, item := range found.Items {
		byName[item.PersonName] = item
	}
	for _, want := range inv.Items {
		got := byName[want.PersonName]
		assert.True(t, want.WorkTime.Equal(got.WorkTime), got.WorkTime.String())
		assert.Equal(t, want.ExcessAmount, got.ExcessAmount)
		assert.Equal(t, want.ShortageAmount, got.ShortageAmount)
		assert.Equal(t, want.Subtotal, got.Subtotal)
	}

	byOrder, err := repo.FindByOrderID(ctx, "MP20260201000001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byOrder.ID)

	exists, err := repo.ExistsForOrder(ctx, "MP20260201000001")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByOrderID(ctx, "MP20260201000002")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormInvoiceRepository_DuplicateOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, "MP20260201000001", "2602001")))

	err := repo.Create(ctx, newTestInvoice(t, "MP20260201000001", "2602002"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicateInvoice), err.Error())
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(setupTestDB(t))

	inv := newTestInvoice(t, "MP20260201000001", "2602001")
	require.NoError(t, repo.Create(ctx, inv))

	stale, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	current, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NoError(t, current.RemoveItem(current.Items[0].ID))
	require.NoError(t, current.Issue())
	require.NoError(t, repo.SaveWithLock(ctx, current))

	reloaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusIssued, reloaded.Status)
	assert.Len(t, reloaded.Items, 1)
	assert.Equal(t, current.TotalAmount, reloaded.TotalAmount)
	assert.Equal(t, 2, reloaded.Version)

	err = repo.SaveWithLock(ctx, stale)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
}

func TestGormInvoiceRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(setupTestDB(t))

	draft := newTestInvoice(t, "MP20260201000001", "2602001")
	issued := newTestInvoice(t, "MP20260201000002", "2602002")
	require.NoError(t, issued.Issue())
	require.NoError(t, repo.Create(ctx, draft))
	require.NoError(t, repo.Create(ctx, issued))

	all, total, err := repo.List(ctx, invoice.ListFilter{Filter: shared.Filter{Page: 1, PageSize: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	visible, total, err := repo.List(ctx, invoice.ListFilter{
		Filter:         shared.Filter{Page: 1, PageSize: 10},
		CustomerID:     "0000000001",
		PartnerVisible: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visible, 1)
	assert.Equal(t, "2602002", visible[0].InvoiceNo)

	n, err := repo.CountByStatus(ctx, "", invoice.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
