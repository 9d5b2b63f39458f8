package channels

import "context"

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

var (
	_ EmailSender = (*SMTPSender)(nil)
	_ SMSSender   = (*HTTPSMSSender)(nil)
)
