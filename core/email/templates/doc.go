// Package templates renders templ components into HTML email bodies.
//
// Build the body from the components package and pass the result to an
// email.EmailSender:
//
//	body, err := templates.Render(ctx, components.Layout(
//		components.Header("Active sessions above threshold", ""),
//		components.Text("12 sessions are active."),
//	))
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{SendTo: to, Subject: subject, BodyHTML: body})
package templates
