package scheduler

import (
	"context"
	"time"

	apppartner "github.com/edi/backend/internal/application/partner"
	"go.uber.org/zap"
)

// PartnerNoticeJob is the job name of the unconfirmed order notice
const PartnerNoticeJob = "partner-notice"

// DefaultPartnerNoticeCron fires on the candidate days for month end.
// The job itself only sends on the last day of the month.
const DefaultPartnerNoticeCron = "0 18 28-31 * *"

// PartnerNotifier sends the unconfirmed order notices
type PartnerNotifier interface {
	NotifyUnconfirmedOrders(ctx context.Context, now time.Time) (*apppartner.NoticeResult, error)
}

// RegisterPartnerNotice schedules notifier on schedule. An empty schedule
// uses DefaultPartnerNoticeCron.
func (s *Scheduler) RegisterPartnerNotice(schedule string, notifier PartnerNotifier) error {
	if schedule == "" {
		schedule = DefaultPartnerNoticeCron
	}
	return s.AddCronJob(PartnerNoticeJob, schedule, partnerNoticeTask(notifier, s.logger))
}

func partnerNoticeTask(notifier PartnerNotifier, logger *zap.Logger) TaskFunc {
	return func(ctx context.Context, now time.Time) error {
		if !IsLastDayOfMonth(now) {
			logger.Debug("partner notice skipped, not month end", zap.Time("now", now))
			return nil
		}
		result, err := notifier.NotifyUnconfirmedOrders(ctx, now)
		if err != nil {
			return err
		}
		logger.Info("partner notices dispatched",
			zap.Int("sent", result.Sent),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
		return nil
	}
}

// IsLastDayOfMonth reports whether t falls on the last day of its month
func IsLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}
