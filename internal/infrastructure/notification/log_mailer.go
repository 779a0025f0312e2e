// Package notification delivers outgoing mail.
package notification

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrNoRecipients is returned for a message without a To address
var ErrNoRecipients = errors.New("mail has no recipients")

// LogMailer writes each message to the log instead of delivering it.
// It keeps the last messages it saw for the operator CLI and tests.
type LogMailer struct {
	from   string
	logger *zap.Logger

	mu   sync.Mutex
	sent []shared.MailMessage
	keep int
}

// NewLogMailer creates a LogMailer
func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{from: from, logger: logger, keep: 100}
}

// Send implements shared.Mailer
func (m *LogMailer) Send(ctx context.Context, msg shared.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := nonEmpty(msg.To)
	if len(to) == 0 {
		return ErrNoRecipients
	}
	m.logger.Info("mail sent",
		zap.String("from", m.from),
		zap.Strings("to", to),
		zap.Strings("cc", nonEmpty(msg.CC)),
		zap.Int("bcc_count", len(nonEmpty(msg.BCC))),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	m.logger.Debug("mail body", zap.String("subject", msg.Subject), zap.String("body", msg.Body))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if len(m.sent) > m.keep {
		m.sent = m.sent[len(m.sent)-m.keep:]
	}
	return nil
}

// Sent returns a copy of the retained messages, oldest first
func (m *LogMailer) Sent() []shared.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shared.MailMessage(nil), m.sent...)
}

func nonEmpty(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

var _ shared.Mailer = (*LogMailer)(nil)
