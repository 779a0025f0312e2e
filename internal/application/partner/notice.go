package partner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NoticeResult counts the outcome of one notice run
type NoticeResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NoticeService mails partners about orders waiting for their approval
type NoticeService struct {
	scope       txscope.TransactionScope
	mailer      shared.Mailer
	companyName string
	siteURL     string
	logger      *zap.Logger
}

// NewNoticeService creates a NoticeService. siteURL is the public base URL
// partners log in to.
func NewNoticeService(scope txscope.TransactionScope, mailer shared.Mailer, companyName, siteURL string) *NoticeService {
	return &NoticeService{
		scope:       scope,
		mailer:      mailer,
		companyName: companyName,
		siteURL:     strings.TrimRight(siteURL, "/"),
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *NoticeService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// NoticeDeadline is the 15th of the month after now
func NoticeDeadline(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 15, 0, 0, 0, 0, now.Location())
}

// NotifyUnconfirmedOrders sends one notice per UNCONFIRMED order.
// Customers without an email address are skipped. Every delivered notice
// is recorded in the customer's email log.
func (s *NoticeService) NotifyUnconfirmedOrders(ctx context.Context, now time.Time) (*NoticeResult, error) {
	var (
		orders    []order.Order
		customers map[string]*partner.Customer
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		orders, err = repos.OrderRepo().ListByStatus(ctx, order.StatusUnconfirmed)
		if err != nil {
			return err
		}
		customers, err = loadCustomers(ctx, repos, orders)
		return err
	})
	if err != nil {
		return nil, err
	}

	deadline := NoticeDeadline(now).Format("01月02日")
	result := &NoticeResult{}
	for i := range orders {
		o := &orders[i]
		customer, ok := customers[o.CustomerID]
		if !ok || !customer.HasEmail() {
			s.logger.Warn("skipping order notice, customer has no email",
				zap.String("order_id", o.ID), zap.String("customer_id", o.CustomerID))
			result.Skipped++
			continue
		}

		msg := shared.MailMessage{
			To:      []string{customer.Email},
			CC:      customer.CCList(),
			BCC:     customer.BCCList(),
			Subject: fmt.Sprintf("注文書発行のお知らせ（%s）", s.companyName),
			Body:    s.noticeBody(customer.Name, s.orderURL(o.ID), deadline),
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.Error("order notice failed",
				zap.String("order_id", o.ID), zap.String("to", customer.Email), zap.Error(err))
			result.Failed++
			continue
		}
		result.Sent++

		entry := partner.NewSentEmailLog(customer.ID, msg.Subject, msg.Body, now)
		err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
			return repos.EmailLogRepo().Create(ctx, entry)
		})
		if err != nil {
			s.logger.Warn("failed to record sent notice", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	s.logger.Info("order notices sent",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func loadCustomers(ctx context.Context, repos txscope.TransactionalRepositories, orders []order.Order) (map[string]*partner.Customer, error) {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.CustomerID]; !ok {
			seen[o.CustomerID] = struct{}{}
			ids = append(ids, o.CustomerID)
		}
	}
	out := make(map[string]*partner.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := repos.CustomerRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (s *NoticeService) orderURL(orderID string) string {
	return fmt.Sprintf("%s/orders/%s", s.siteURL, orderID)
}

func (s *NoticeService) noticeBody(customerName, url, deadline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 御中\n\n", customerName)
	b.WriteString("いつもお世話になっております。\n")
	fmt.Fprintf(&b, "%sでございます。\n\n", s.companyName)
	b.WriteString("EDIに注文書を登録しましたので、\n")
	b.WriteString("下記ＵＲＬからユーザＩＤ／パスワードを用いてログインし、\n")
	b.WriteString("注文書詳細画面から「注文書印刷」ボタンを押下して、\n")
	b.WriteString("注文書ファイル（ＰＤＦ）のダウンロードを行って下さい。\n")
	b.WriteString("ダウンロードした注文書は、御社サーバ上に必ず保管して下さい。\n\n")
	fmt.Fprintf(&b, "《URL》\n%s\n\n", url)
	b.WriteString("《送付物》\n\n「注文書」\n「注文請書」\n  各1通\n\n\n")
	b.WriteString("《お願い》\n\n")
	b.WriteString("注文書内容をご確認いただき、内容にご同意いただける場合は「承認」ボタンを押してください。\n")
	b.WriteString("承認いただけない場合はメールに記載し御返信ください。\n\n")
	fmt.Fprintf(&b, "締切：%s\n\n", deadline)
	b.WriteString("※尚、「承認」をいただいた場合は、注文請書のご返送は不要となります。\n\n\n")
	b.WriteString("以上、よろしくお願いします。\n")
	return b.String()
}
