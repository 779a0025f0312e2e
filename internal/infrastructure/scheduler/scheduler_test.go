package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	apppartner "github.com/edi/backend/internal/application/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	calls []time.Time
	err   error
}

func (n *stubNotifier) NotifyUnconfirmedOrders(_ context.Context, now time.Time) (*apppartner.NoticeResult, error) {
	n.calls = append(n.calls, now)
	if n.err != nil {
		return nil, n.err
	}
	return &apppartner.NoticeResult{Sent: 2}, nil
}

type slotStore struct {
	taken map[string]bool
}

func (s *slotStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.taken[key] {
		return false, nil
	}
	s.taken[key] = true
	return true, nil
}
func (s *slotStore) IsProcessed(_ context.Context, key string) (bool, error) { return s.taken[key], nil }
func (s *slotStore) Close() error                                         { return nil }

func newTestScheduler(t *testing.T, now time.Time) *Scheduler {
	s, err := New(Config{Location: time.UTC}, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func findJob(s *Scheduler, name string) JobState {
	for _, j := range s.Jobs() {
		if j.Name == name {
			return j
		}
	}
	return JobState{}
}

func TestIsLastDayOfMonth(t *testing.T) {
	assert.True(t, IsLastDayOfMonth(time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)))
	assert.True(t, IsLastDayOfMonth(time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)))
	assert.False(t, IsLastDayOfMonth(time.Date(2028, 2, 28, 18, 0, 0, 0, time.UTC)))
	assert.False(t, IsLastDayOfMonth(time.Date(2026, 3, 30, 18, 0, 0, 0, time.UTC)))
}

func TestScheduler_AddCronJob(t *testing.T) {
	s := newTestScheduler(t, time.Now())

	require.NoError(t, s.AddCronJob("nightly", "0 2 * * *", func(context.Context, time.Time) error { return nil }))
	assert.Error(t, s.AddCronJob("nightly", "0 2 * * *", func(context.Context, time.Time) error { return nil }))
	assert.Error(t, s.AddCronJob("broken", "not a cron", func(context.Context, time.Time) error { return nil }))
	assert.Error(t, s.AddCronJob("", "0 2 * * *", nil))

	state := findJob(s, "nightly")
	assert.Equal(t, JobStatusPending, state.Status)
	assert.Equal(t, "0 2 * * *", state.Schedule)
	assert.Len(t, s.Jobs(), 1)
}

func TestScheduler_RunNow(t *testing.T) {
	ctx := context.Background()
	monthEnd := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)

	t.Run("sends on the last day of the month", func(t *testing.T) {
		s := newTestScheduler(t, monthEnd)
		notifier := &stubNotifier{}
		require.NoError(t, s.RegisterPartnerNotice("", notifier))

		require.NoError(t, s.RunNow(ctx, PartnerNoticeJob))
		assert.Equal(t, []time.Time{monthEnd}, notifier.calls)

		state := findJob(s, PartnerNoticeJob)
		assert.Equal(t, JobStatusSuccess, state.Status)
		assert.Equal(t, DefaultPartnerNoticeCron, state.Schedule)
	})

	t.Run("skips other days", func(t *testing.T) {
		s := newTestScheduler(t, time.Date(2026, 1, 29, 18, 0, 0, 0, time.UTC))
		notifier := &stubNotifier{}
		require.NoError(t, s.RegisterPartnerNotice("", notifier))

		require.NoError(t, s.RunNow(ctx, PartnerNoticeJob))
		assert.Empty(t, notifier.calls)
	})

	t.Run("failures are recorded", func(t *testing.T) {
		s := newTestScheduler(t, monthEnd)
		require.NoError(t, s.RegisterPartnerNotice("", &stubNotifier{err: errors.New("db down")}))

		assert.Error(t, s.RunNow(ctx, PartnerNoticeJob))
		state := findJob(s, PartnerNoticeJob)
		assert.Equal(t, JobStatusFailed, state.Status)
		assert.Equal(t, "db down", state.Error)
	})

	t.Run("unknown job", func(t *testing.T) {
		s := newTestScheduler(t, monthEnd)
		assert.Error(t, s.RunNow(ctx, "missing"))
	})
}

func TestScheduler_SlotRunsOnce(t *testing.T) {
	monthEnd := time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC)
	store := &slotStore{taken: map[string]bool{}}
	notifier := &stubNotifier{}

	first := newTestScheduler(t, monthEnd)
	first.SetIdempotencyStore(store)
	require.NoError(t, first.RegisterPartnerNotice("", notifier))
	second := newTestScheduler(t, monthEnd)
	second.SetIdempotencyStore(store)
	require.NoError(t, second.RegisterPartnerNotice("", notifier))

	first.runScheduled(PartnerNoticeJob)
	second.runScheduled(PartnerNoticeJob)

	assert.Len(t, notifier.calls, 1)
	assert.Equal(t, JobStatusSkipped, findJob(second, PartnerNoticeJob).Status)
}
