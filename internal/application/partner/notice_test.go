package partner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func unconfirmed(t *testing.T, id, customerID string) order.Order {
	o, err := order.NewOrder(id, customerID, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), order.Header{})
	require.NoError(t, err)
	require.NoError(t, o.Publish("orders/"+id+"/x.pdf"))
	return *o
}

func TestNoticeDeadline(t *testing.T) {
	assert.Equal(t, "02月15日", NoticeDeadline(time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)).Format("01月02日"))
	assert.Equal(t, "01月15日", NoticeDeadline(time.Date(2026, 12, 20, 10, 0, 0, 0, time.UTC)).Format("01月02日"))
}

func TestNotifyUnconfirmedOrders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)

	withMail, err := partner.NewCustomer("0000000001", partner.CustomerInput{Name: "株式会社サンプル", Email: "a@example.com", CC: "b@example.com"})
	require.NoError(t, err)
	noMail, err := partner.NewCustomer("0000000002", partner.CustomerInput{Name: "メールなし商事"})
	require.NoError(t, err)
	failing, err := partner.NewCustomer("0000000003", partner.CustomerInput{Name: "不達株式会社", Email: "bounce@example.com"})
	require.NoError(t, err)

	repos := testutil.NewRepositories()
	mailer := new(testutil.MockMailer)
	svc := NewNoticeService(repos.Scope(), mailer, "有限会社 マックプランニング", "https://edi.example.com/")

	repos.Orders.On("ListByStatus", ctx, order.StatusUnconfirmed).Return([]order.Order{
		unconfirmed(t, "MP20260131000001", "0000000001"),
		unconfirmed(t, "MP20260131000002", "0000000002"),
		unconfirmed(t, "MP20260131000003", "0000000003"),
	}, nil)
	repos.Customers.On("FindByIDs", ctx, []string{"0000000001", "0000000002", "0000000003"}).
		Return([]partner.Customer{*withMail, *noMail, *failing}, nil)

	mailer.On("Send", ctx, mock.MatchedBy(func(msg shared.MailMessage) bool {
		return msg.To[0] == "a@example.com"
	})).Return(nil)
	mailer.On("Send", ctx, mock.MatchedBy(func(msg shared.MailMessage) bool {
		return msg.To[0] == "bounce@example.com"
	})).Return(errors.New("mailbox unavailable"))

	var logged *partner.SentEmailLog
	repos.EmailLogs.On("Create", ctx, mock.AnythingOfType("*partner.SentEmailLog")).
		Run(func(args mock.Arguments) { logged = args.Get(1).(*partner.SentEmailLog) }).
		Return(nil).Once()

	result, err := svc.NotifyUnconfirmedOrders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, &NoticeResult{Sent: 1, Skipped: 1, Failed: 1}, result)

	require.NotNil(t, logged)
	assert.Equal(t, "0000000001", logged.CustomerID)
	assert.Equal(t, "注文書発行のお知らせ（有限会社 マックプランニング）", logged.Subject)
	assert.True(t, strings.HasPrefix(logged.Body, "株式会社サンプル 御中"))
	assert.Contains(t, logged.Body, "https://edi.example.com/orders/MP20260131000001")
	assert.Contains(t, logged.Body, "締切：02月15日")
	assert.Equal(t, now, logged.SentAt)
	mailer.AssertExpectations(t)
	repos.AssertExpectations(t)
}

func TestNotifyUnconfirmedOrders_NothingPending(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories()
	mailer := new(testutil.MockMailer)
	svc := NewNoticeService(repos.Scope(), mailer, "x", "http://localhost")
	repos.Orders.On("ListByStatus", ctx, order.StatusUnconfirmed).Return([]order.Order{}, nil)

	result, err := svc.NotifyUnconfirmedOrders(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, &NoticeResult{}, result)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
