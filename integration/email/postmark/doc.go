// Package postmark implements email.EmailSender on Postmark's transactional
// API. The session service uses it to deliver active-session reports to
// operators.
//
// # Configuration
//
//	type Config struct {
//		PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
//		PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
//		SenderEmail          string `env:"SENDER_EMAIL"`
//		SupportEmail         string `env:"SUPPORT_EMAIL"`
//	}
//
// Config.Enabled reports whether a server token is present; without one the
// service falls back to email.DevSender. New validates the full
// configuration and fails with email.ErrInvalidConfig listing every problem.
//
// # Usage
//
//	var cfg postmark.Config
//	config.MustLoad(&cfg)
//
//	sender, err := postmark.New(cfg)
//	if err != nil {
//		return err
//	}
//	notifier := sessionmonitor.NewEmailNotifier(sender, "ops@example.org")
//
// # Errors
//
// Transport failures and Postmark error codes are both joined with
// email.ErrFailedToSendEmail, so callers need a single errors.Is check.
package postmark
