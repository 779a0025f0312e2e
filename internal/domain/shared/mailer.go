package shared

import "context"

// MailMessage is a plain-text mail
type MailMessage struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
}

// Mailer delivers mail
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
