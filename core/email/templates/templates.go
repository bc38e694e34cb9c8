package templates

import (
	"context"
	"errors"
	"strings"

	"github.com/a-h/templ"
)

var (
	ErrNilComponent   = errors.New("email template: component is nil")
	ErrRenderTemplate = errors.New("email template: failed to render")
)

// Render writes c into a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	if c == nil {
		return "", ErrNilComponent
	}
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", errors.Join(ErrRenderTemplate, err)
	}
	return b.String(), nil
}
