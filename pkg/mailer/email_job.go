package mailer

import "context"

// EmailJob is a rendered email ready to hand to a Sender.
// HTML is optional; Text is the fallback body.
type EmailJob struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}
