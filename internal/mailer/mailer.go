package mailer

import "context"

// Mailer sends HTML email through an external transport. The reminder
// dispatcher checks Verify once before a batch and aborts if it fails.
type Mailer interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, to, name, subject, html string) error
}
