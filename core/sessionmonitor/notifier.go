package sessionmonitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-h/templ"

	"github.com/openlims/authsession/core/email"
	"github.com/openlims/authsession/core/email/templates"
	"github.com/openlims/authsession/core/email/templates/components"
	"github.com/openlims/authsession/core/logger"
)

// ErrNoRecipient is returned by NewEmailNotifier without a recipient.
var ErrNoRecipient = errors.New("session monitor: report recipient is required")

// LogNotifier writes reports to a logger at Warn level.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier returns a LogNotifier. A nil log discards.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, r Report) error {
	lines := make([]any, 0, len(r.Sessions))
	for i, l := range r.Sessions {
		lines = append(lines, slog.Group(fmt.Sprintf("%d", i),
			slog.String("session_token", l.Token),
			slog.String("user_id", l.UserID),
			slog.String("remote_host", l.RemoteHost),
			slog.Time("started_at", l.StartedAt),
		))
	}
	n.log.WarnContext(ctx, "Active sessions above threshold",
		logger.Count("active_sessions", r.Active),
		logger.Count("threshold", r.Threshold),
		slog.Group("sessions", lines...),
	)
	return nil
}

// EmailNotifier mails reports through an email.EmailSender.
type EmailNotifier struct {
	sender email.EmailSender
	to     string
}

// NewEmailNotifier returns an EmailNotifier sending to "to".
func NewEmailNotifier(sender email.EmailSender, to string) (*EmailNotifier, error) {
	if to == "" {
		return nil, ErrNoRecipient
	}
	return &EmailNotifier{sender: sender, to: to}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, r Report) error {
	body, err := templates.Render(ctx, reportEmail(r))
	if err != nil {
		return fmt.Errorf("render session report: %w", err)
	}
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.to,
		Subject:  fmt.Sprintf("%d active sessions (threshold %d)", r.Active, r.Threshold),
		BodyHTML: body,
		Tag:      "session_report",
	})
}

func reportEmail(r Report) templ.Component {
	rows := make([][]string, 0, len(r.Sessions))
	for _, l := range r.Sessions {
		rows = append(rows, []string{
			l.Token, l.UserID, l.RemoteHost,
			timestamp(l.StartedAt), timestamp(l.LastActiveAt), timestamp(l.ExpiresAt),
		})
	}
	return components.Layout(
		components.Header("Active sessions above threshold", "Report generated "+timestamp(r.GeneratedAt)),
		components.Text(fmt.Sprintf("%d sessions are active, above the threshold of %d.", r.Active, r.Threshold)),
		components.Table([]string{"Session", "User", "Remote host", "Started", "Last active", "Expires"}, rows),
		components.TextSecondary("Session tokens are masked."),
	)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
