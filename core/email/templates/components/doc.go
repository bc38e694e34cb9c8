// Package components holds the templ building blocks of operator emails.
//
// Layout wraps the body in an email-safe HTML document with inline styles.
// Header, Text, TextSecondary and Table produce its sections; every string
// argument is HTML-escaped.
//
//	components.Layout(
//		components.Header("Active sessions above threshold", "Generated 2024-03-01T12:00:00Z"),
//		components.Text("12 sessions are active, above the threshold of 10."),
//		components.Table([]string{"User", "Remote host"}, [][]string{{"alice", "10.0.0.7"}}),
//	)
package components
