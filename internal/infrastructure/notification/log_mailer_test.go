package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mailer := NewLogMailer("edi@example.com", zap.New(core))

	err := mailer.Send(context.Background(), shared.MailMessage{
		To:      []string{"a@example.com"},
		CC:      []string{"", "b@example.com"},
		Subject: "【承認通知】注文番号：MP20260201000001",
		Body:    "本文",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("mail sent").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "edi@example.com", fields["from"])
	assert.Equal(t, "【承認通知】注文番号：MP20260201000001", fields["subject"])
	assert.Len(t, mailer.Sent(), 1)
}

func TestLogMailer_Rejects(t *testing.T) {
	mailer := NewLogMailer("", nil)

	err := mailer.Send(context.Background(), shared.MailMessage{To: []string{" "}})
	assert.ErrorIs(t, err, ErrNoRecipients)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mailer.Send(ctx, shared.MailMessage{To: []string{"a@example.com"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mailer.Sent())
}

func TestLogMailer_KeepsRecentMessages(t *testing.T) {
	mailer := NewLogMailer("", nil)
	for i := 0; i < 105; i++ {
		require.NoError(t, mailer.Send(context.Background(), shared.MailMessage{
			To:      []string{"a@example.com"},
			Subject: fmt.Sprintf("notice %d", i),
		}))
	}
	sent := mailer.Sent()
	require.Len(t, sent, 100)
	assert.Equal(t, "notice 5", sent[0].Subject)
}
