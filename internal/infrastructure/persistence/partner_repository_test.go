package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, id, name, kana string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(id, partner.CustomerInput{
		Name:     name,
		NameKana: kana,
		Email:    "info@example.com",
		CC:       "a@example.com,b@example.com",
		Bank: partner.BankAccount{
			BankName:      "みずほ銀行",
			AccountType:   partner.AccountTypeChecking,
			AccountNumber: "1234567",
		},
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestGormCustomerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestCustomer(t, "0000000001", "株式会社サンプル", "サンプル")))
	require.NoError(t, repo.Create(ctx, newTestCustomer(t, "0000000002", "テスト商事", "テストショウジ")))

	t.Run("find round trips bank and cc", func(t *testing.T) {
		c, err := repo.FindByID(ctx, "0000000001")
		require.NoError(t, err)
		assert.Equal(t, "株式会社サンプル", c.Name)
		assert.Equal(t, partner.AccountTypeChecking, c.Bank.AccountType)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.CCList())
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Create(ctx, newTestCustomer(t, "0000000001", "別会社", ""))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("search matches kana", func(t *testing.T) {
		customers, total, err := repo.List(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "ショウジ"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, customers, 1)
		assert.Equal(t, "0000000002", customers[0].ID)
	})

	t.Run("find by ids", func(t *testing.T) {
		customers, err := repo.FindByIDs(ctx, []string{"0000000001", "0000000002", "0000000404"})
		require.NoError(t, err)
		assert.Len(t, customers, 2)

		none, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("optimistic update", func(t *testing.T) {
		a, err := repo.FindByID(ctx, "0000000002")
		require.NoError(t, err)
		b, err := repo.FindByID(ctx, "0000000002")
		require.NoError(t, err)

		in := a.CustomerInput
		in.Address = "東京都千代田区"
		require.NoError(t, a.Update(in))
		require.NoError(t, repo.SaveWithLock(ctx, a))
		assert.Equal(t, 2, a.Version)

		err = repo.SaveWithLock(ctx, b)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "0000000002"))
		err := repo.Delete(ctx, "0000000002")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAccountRepository(setupTestDB(t))

	for _, name := range []string{"partner01", "partner02"} {
		user, profile, err := partner.NewPartnerUser("0000000001", name, name+"@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, user, profile))
	}
	other, otherProfile, err := partner.NewPartnerUser("0000000002", "partner03", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, other, otherProfile))

	taken, err := repo.ExistsByUsername(ctx, "partner01")
	require.NoError(t, err)
	assert.True(t, taken)

	dup, dupProfile, err := partner.NewPartnerUser("0000000002", "partner01", "")
	require.NoError(t, err)
	err = repo.Create(ctx, dup, dupProfile)
	assert.True(t, errors.Is(err, partner.ErrUsernameTaken))

	profiles, err := repo.FindProfilesByCustomer(ctx, "0000000001")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.True(t, profiles[0].IsFirstLogin)

	removed, err := repo.DeleteByCustomer(ctx, "0000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	taken, err = repo.ExistsByUsername(ctx, "partner01")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.ExistsByUsername(ctx, "partner03")
	require.NoError(t, err)
	assert.True(t, taken, "other customers keep their users")

	removed, err = repo.DeleteByCustomer(ctx, "0000000001")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGormContractProgressRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormContractProgressRepository(setupTestDB(t))

	_, err := repo.Find(ctx, "0000000001")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	invited, err := partner.NewContractProgress("0000000001", partner.ContractStatusInvited)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, invited))

	sent, err := partner.NewContractProgress("0000000001", partner.ContractStatusContractSent)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, sent))

	other, err := partner.NewContractProgress("0000000002", partner.ContractStatusInvited)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, other))

	found, err := repo.Find(ctx, "0000000001")
	require.NoError(t, err)
	assert.Equal(t, partner.ContractStatusContractSent, found.Status)

	rows, total, err := repo.List(ctx, partner.ContractStatusInvited, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "0000000002", rows[0].CustomerID)

	require.NoError(t, repo.DeleteByCustomer(ctx, "0000000001"))
	require.NoError(t, repo.DeleteByCustomer(ctx, "0000000001"))
	_, err = repo.Find(ctx, "0000000001")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormEmailLogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormEmailLogRepository(setupTestDB(t))

	base := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)
	for i, subject := range []string{"一通目", "二通目", "三通目"} {
		require.NoError(t, repo.Create(ctx, partner.NewSentEmailLog("0000000001", subject, "本文", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, partner.NewSentEmailLog("0000000002", "他社", "本文", base)))

	logs, total, err := repo.ListByCustomer(ctx, "0000000001", shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.Equal(t, "三通目", logs[0].Subject, "newest first")

	removed, err := repo.DeleteByCustomer(ctx, "0000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	_, total, err = repo.ListByCustomer(ctx, "0000000002", shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestGormProjectRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProjectRepository(setupTestDB(t))

	p, err := order.NewProject("PRJ00000001", "基幹システム更改")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, p.Rename("基幹システム更改 第二期"))
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, "PRJ00000001")
	require.NoError(t, err)
	assert.Equal(t, "基幹システム更改 第二期", found.Name)

	projects, total, err := repo.List(ctx, shared.Filter{Search: "第二期"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, projects, 1)

	_, err = repo.FindByID(ctx, "PRJ00000404")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
