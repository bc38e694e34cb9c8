package postmark

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"

	"github.com/openlims/authsession/core/email"
)

// api is the subset of *postmark.Client used here.
type api interface {
	SendEmail(ctx context.Context, e postmark.Email) (postmark.EmailResponse, error)
}

// Client sends email through Postmark's transactional API.
type Client struct {
	api    api
	config Config
}

// New creates a Postmark-backed email sender. Both tokens and both
// addresses are required.
func New(cfg Config) (*Client, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Client{
		api:    postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// MustNewClient is New that panics on invalid configuration.
func MustNewClient(cfg Config) *Client {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// SendEmail implements email.EmailSender. Opens and HTML link clicks are
// tracked and replies go to the support address.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.api.SendEmail(ctx, postmark.Email{
		From:       c.config.SenderEmail,
		ReplyTo:    c.config.SupportEmail,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			email.ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

func validate(cfg Config) error {
	var errs []error
	if cfg.PostmarkServerToken == "" {
		errs = append(errs, errors.New("PostmarkServerToken is required"))
	}
	if cfg.PostmarkAccountToken == "" {
		errs = append(errs, errors.New("PostmarkAccountToken is required"))
	}
	if !isValidEmail(cfg.SenderEmail) {
		errs = append(errs, errors.New("SenderEmail must be a valid email address"))
	}
	if !isValidEmail(cfg.SupportEmail) {
		errs = append(errs, errors.New("SupportEmail must be a valid email address"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{email.ErrInvalidConfig}, errs...)...)
	}
	return nil
}

func isValidEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
