package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	o := newTestOrder(t, "MP20260201000001", "0000000001")
	require.NoError(t, repo.Create(ctx, o))

	t.Run("round trips header, band and items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		assert.Equal(t, order.StatusDraft, found.Status)
		assert.Equal(t, "0000000001", found.CustomerID)
		assert.Equal(t, "PRJ00000001", found.ProjectID)
		assert.Equal(t, "月末締め翌月末払い", found.PaymentCondition)
		assert.True(t, found.OrderDate.Equal(testOrderDate))
		assert.True(t, found.OrderEndYM.IsZero())
		assert.Empty(t, found.ExternalSignatureID)
		assert.Empty(t, found.DocumentHash)
		assert.Nil(t, found.FinalizedAt)
		assert.Equal(t, 1, found.Version)

		require.Len(t, found.Items, 2)
		names := []string{found.Items[0].PersonName, found.Items[1].PersonName}
		assert.ElementsMatch(t, []string{"佐藤", "鈴木"}, names)
		for _, item := range found.Items {
			assert.Equal(t, o.ID, item.OrderID)
			if item.PersonName == "鈴木" {
				assert.True(t, item.Effort.Equal(decimal.RequireFromString("0.5")), item.Effort.String())
				assert.True(t, item.LowerLimit.Equal(order.DefaultLowerLimit))
			}
		}
	})

	t.Run("locking read returns the same order", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, o.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "MP20260201999999")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	o := newTestOrder(t, "MP20260201000001", "0000000001")
	require.NoError(t, repo.Create(ctx, o))

	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	current, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	header := current.Header
	header.Remarks = "単価改定"
	require.NoError(t, current.UpdateHeader(header))
	require.NoError(t, current.RemoveItem(current.Items[0].ID))
	_, err = current.AddItem(order.ItemInput{PersonName: "田中", BaseFee: 700000})
	require.NoError(t, err)

	require.NoError(t, repo.SaveWithLock(ctx, current))
	assert.Equal(t, 2, current.Version)

	reloaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "単価改定", reloaded.Remarks)
	assert.Equal(t, 2, reloaded.Version)
	require.Len(t, reloaded.Items, 2)
	var names []string
	for _, item := range reloaded.Items {
		names = append(names, item.PersonName)
	}
	assert.Contains(t, names, "田中")

	t.Run("stale version is rejected", func(t *testing.T) {
		err := repo.SaveWithLock(ctx, stale)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, 1, stale.Version)
	})

	t.Run("missing order", func(t *testing.T) {
		ghost := newTestOrder(t, "MP20260201000099", "0000000001")
		err := repo.SaveWithLock(ctx, ghost)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormOrderRepository_MarkApproved(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	o := newTestOrder(t, "MP20260201000001", "0000000001")
	require.NoError(t, repo.Create(ctx, o))
	require.NoError(t, o.Publish("orders/MP20260201000001/order.pdf"))
	require.NoError(t, repo.SaveWithLock(ctx, o))

	first, loser := func() (*order.Order, *order.Order) {
		a, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		b, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		return a, b
	}()

	require.NoError(t, first.Finalize(time.Now()))
	require.NoError(t, first.Approve("aaaa", "acceptance/aaaa.pdf"))
	applied, err := repo.MarkApproved(ctx, first)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 3, first.Version)

	require.NoError(t, loser.Finalize(time.Now()))
	require.NoError(t, loser.Approve("bbbb", "acceptance/bbbb.pdf"))
	applied, err = repo.MarkApproved(ctx, loser)
	require.NoError(t, err)
	assert.False(t, applied, "second approval must not overwrite the frozen document")

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusApproved, stored.Status)
	assert.Equal(t, "aaaa", stored.DocumentHash)
	assert.Equal(t, "acceptance/aaaa.pdf", stored.AcceptancePDFKey)
	assert.Equal(t, "orders/MP20260201000001/order.pdf", stored.OrderPDFKey)
	require.NotNil(t, stored.FinalizedAt)

	t.Run("approved order is no longer approvable", func(t *testing.T) {
		stored.Status = order.StatusConfirming
		applied, err := repo.MarkApproved(ctx, stored)
		require.NoError(t, err)
		assert.False(t, applied)
	})

}

func TestGormOrderRepository_SignatureRef(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	first := newTestOrder(t, "MP20260201000001", "0000000001")
	second := newTestOrder(t, "MP20260201000002", "0000000001")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	set, err := repo.SetSignatureRef(ctx, first.ID, "doc-123")
	require.NoError(t, err)
	assert.True(t, set)

	set, err = repo.SetSignatureRef(ctx, first.ID, "doc-456")
	require.NoError(t, err)
	assert.False(t, set, "reference is written once")

	found, err := repo.FindBySignatureRef(ctx, "doc-123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Len(t, found.Items, 2)

	_, err = repo.SetSignatureRef(ctx, second.ID, "doc-123")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = repo.FindBySignatureRef(ctx, "doc-unknown")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormOrderRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOrderRepository(setupTestDB(t))

	for i, id := range []string{"MP20260201000001", "MP20260201000002", "MP20260201000003"} {
		customer := "0000000001"
		if i == 2 {
			customer = "0000000002"
		}
		o := newTestOrder(t, id, customer)
		require.NoError(t, repo.Create(ctx, o))
		if i > 0 {
			require.NoError(t, o.Publish("orders/"+id+".pdf"))
			require.NoError(t, repo.SaveWithLock(ctx, o))
		}
	}

	t.Run("customer filter hides drafts", func(t *testing.T) {
		orders, total, err := repo.List(ctx, order.ListFilter{
			Filter:        shared.Filter{Page: 1, PageSize: 10},
			CustomerID:    "0000000001",
			ExcludeDrafts: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "MP20260201000002", orders[0].ID)
		assert.Len(t, orders[0].Items, 2)
	})

	t.Run("search and paging", func(t *testing.T) {
		orders, total, err := repo.List(ctx, order.ListFilter{
			Filter: shared.Filter{Page: 2, PageSize: 1, OrderBy: "id", OrderDir: "asc", Search: "MP202602"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "MP20260201000002", orders[0].ID)
	})

	t.Run("oldest first by status", func(t *testing.T) {
		orders, err := repo.ListByStatus(ctx, order.StatusUnconfirmed)
		require.NoError(t, err)
		require.Len(t, orders, 2)
	})

	t.Run("counts", func(t *testing.T) {
		n, err := repo.CountByStatus(ctx, "", order.StatusUnconfirmed, order.StatusConfirming)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.CountByStatus(ctx, "0000000002", order.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		exists, err := repo.ExistsForCustomer(ctx, "0000000002")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsForCustomer(ctx, "0000000009")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormOrderRepository_MarkApproved_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	finalized := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	o := &order.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{Version: 4},
		ID:                "MP20260201000001",
		Status:            order.StatusApproved,
		FinalizedAt:       &finalized,
		DocumentHash:      "abc",
		AcceptancePDFKey:  "acceptance/abc.pdf",
	}

	mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$7 AND version = \$8 AND status IN \(\$9,\$10\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.MarkApproved(context.Background(), o)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 4, o.Version, "version only moves when the row was written")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_SetSignatureRef_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "external_signature_id"=$1,"updated_at"=$2 WHERE id = $3 AND external_signature_id IS NULL`)).
		WithArgs("doc-1", sqlmock.AnyArg(), "MP20260201000001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	set, err := repo.SetSignatureRef(context.Background(), "MP20260201000001", "doc-1")
	require.NoError(t, err)
	assert.True(t, set)
	assert.NoError(t, mock.ExpectationsWereMet())
}
