// Package email defines the EmailSender abstraction used for operator
// notifications, plus a DevSender that writes messages to disk.
//
// Providers live in integration/email; the postmark package is the
// production implementation.
//
//	sender := email.NewDevSender("./tmp/emails")
//	err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "ops@example.org",
//		Subject:  "Active sessions above threshold",
//		BodyHTML: report,
//		Tag:      "session_report",
//	})
//
// All failures wrap one of ErrInvalidParams, ErrInvalidConfig or
// ErrFailedToSendEmail.
package email
