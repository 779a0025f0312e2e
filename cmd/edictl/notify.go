package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/edi/backend/internal/application/partner"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/infrastructure/notification"
	"github.com/edi/backend/internal/infrastructure/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	noticeDate  string
	noticeForce bool
)

var notifyPartnersCmd = &cobra.Command{
	Use:   "notify-partners",
	Short: "Mail every customer with an UNCONFIRMED order",
	Long: `Sends the month-end notice asking partners to approve their pending orders.
The scheduler runs this on the last day of each month; use --force to send on any other day.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		now := time.Now()
		if noticeDate != "" {
			d, err := time.ParseInLocation("2006-01-02", noticeDate, time.Local)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			now = d
		}
		if !scheduler.IsLastDayOfMonth(now) && !noticeForce {
			return errors.New(now.Format("2006-01-02") + " is not the last day of the month (use --force)")
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		company := printing.CompanyInfo{Name: e.cfg.Company.Name}.WithDefaults()
		mailer := notification.NewLogMailer(e.cfg.Notification.From, e.log)
		svc := partner.NewNoticeService(e.scope, mailer, company.Name, e.cfg.Notification.SiteURL)
		svc.SetLogger(e.log)

		result, err := svc.NotifyUnconfirmedOrders(cmd.Context(), now)
		if err != nil {
			return err
		}
		e.log.Info("Partner notices dispatched",
			zap.Int("sent", result.Sent),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "sent=%d skipped=%d failed=%d\n", result.Sent, result.Skipped, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d notices failed", result.Failed)
		}
		return nil
	},
}

func init() {
	notifyPartnersCmd.Flags().StringVar(&noticeDate, "date", "", "run as of this date (YYYY-MM-DD); defaults to today")
	notifyPartnersCmd.Flags().BoolVar(&noticeForce, "force", false, "send even when the date is not month end")
}
