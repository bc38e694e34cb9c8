package sessionmonitor

import "time"

// Config controls when the monitor reports the live sessions.
type Config struct {
	// NotifyThreshold is the active session count above which a report is
	// sent. 0 disables reports.
	NotifyThreshold int           `env:"SESSION_NOTIFY_THRESHOLD" envDefault:"0"`
	NotifyDelay     time.Duration `env:"SESSION_NOTIFY_DELAY" envDefault:"1h"`
	// NotifyEmail receives reports when an email sender is configured.
	NotifyEmail string `env:"SESSION_NOTIFY_EMAIL"`
}
