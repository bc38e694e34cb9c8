package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	layoutOpen = `<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"></head>` +
		`<body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial,Helvetica,sans-serif;color:#1f2933;">` +
		`<table role="presentation" width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">` +
		`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="max-width:720px;background-color:#ffffff;border-radius:6px;"><tr><td style="padding:32px;">`
	layoutClose = `</td></tr></table></td></tr></table></body></html>`

	cellStyle = `padding:6px 8px;border-bottom:1px solid #e4e7eb;font-size:13px;text-align:left;`
)

// Layout renders body inside the base email document.
func Layout(body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, layoutOpen); err != nil {
			return err
		}
		for _, c := range body {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, layoutClose)
		return err
	})
}

// Header renders the title and, when set, a subtitle.
func Header(title, subtitle string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1 style="margin:0 0 8px;font-size:22px;">`+templ.EscapeString(title)+`</h1>`); err != nil {
			return err
		}
		if subtitle == "" {
			return nil
		}
		_, err := io.WriteString(w, `<p style="margin:0 0 16px;color:#616e7c;font-size:14px;">`+templ.EscapeString(subtitle)+`</p>`)
		return err
	})
}

// Text renders a paragraph.
func Text(text string) templ.Component {
	return paragraph(text, "#1f2933")
}

// TextSecondary renders a muted paragraph.
func TextSecondary(text string) templ.Component {
	return paragraph(text, "#7b8794")
}

func paragraph(text, color string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p style="margin:0 0 16px;font-size:14px;line-height:20px;color:`+color+`;">`+templ.EscapeString(text)+`</p>`)
		return err
	})
}

// Table renders a header row and one row per entry of rows.
func Table(head []string, rows [][]string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.write(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="border-collapse:collapse;"><tr>`)
		for _, h := range head {
			sw.write(`<th style="` + cellStyle + `background-color:#f4f5f7;">` + templ.EscapeString(h) + `</th>`)
		}
		sw.write(`</tr>`)
		for _, row := range rows {
			sw.write(`<tr>`)
			for _, cell := range row {
				sw.write(`<td style="` + cellStyle + `">` + templ.EscapeString(cell) + `</td>`)
			}
			sw.write(`</tr>`)
		}
		sw.write(`</table>`)
		return sw.err
	})
}

// stickyWriter keeps the first write error and skips later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err == nil {
		_, s.err = io.WriteString(s.w, str)
	}
}
