package postmark_test

import (
	"context"
	"errors"
	"testing"

	pm "github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openlims/authsession/core/email"
	"github.com/openlims/authsession/integration/email/postmark"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SendEmail(ctx context.Context, e pm.Email) (pm.EmailResponse, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(pm.EmailResponse), args.Error(1)
}

var validConfig = postmark.Config{
	PostmarkServerToken:  "server",
	PostmarkAccountToken: "account",
	SenderEmail:          "noreply@example.org",
	SupportEmail:         "support@example.org",
}

var report = email.SendEmailParams{
	SendTo:   "ops@example.org",
	Subject:  "Active sessions",
	BodyHTML: "<p>12 active</p>",
	Tag:      "session_report",
}

func TestNew(t *testing.T) {
	t.Parallel()

	c, err := postmark.New(validConfig)
	require.NoError(t, err)
	assert.NotNil(t, c)

	bad := validConfig
	bad.PostmarkServerToken = ""
	bad.SenderEmail = "nope"
	_, err = postmark.New(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
	assert.ErrorContains(t, err, "PostmarkServerToken")
	assert.ErrorContains(t, err, "SenderEmail")

	assert.Panics(t, func() { postmark.MustNewClient(postmark.Config{}) })
	assert.True(t, validConfig.Enabled())
	assert.False(t, postmark.Config{}.Enabled())
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("maps params to postmark email", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		api.On("SendEmail", mock.Anything, mock.MatchedBy(func(e pm.Email) bool {
			return e.From == "noreply@example.org" &&
				e.ReplyTo == "support@example.org" &&
				e.To == "ops@example.org" &&
				e.Tag == "session_report" &&
				e.HTMLBody == "<p>12 active</p>" &&
				e.TrackOpens
		})).Return(pm.EmailResponse{}, nil).Once()

		c := postmark.NewWithAPI(validConfig, api)
		require.NoError(t, c.SendEmail(context.Background(), report))
		api.AssertExpectations(t)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		api.On("SendEmail", mock.Anything, mock.Anything).Return(pm.EmailResponse{}, errors.New("timeout"))

		err := postmark.NewWithAPI(validConfig, api).SendEmail(context.Background(), report)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("api error code", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		api.On("SendEmail", mock.Anything, mock.Anything).
			Return(pm.EmailResponse{ErrorCode: 300, Message: "Invalid email request"}, nil)

		err := postmark.NewWithAPI(validConfig, api).SendEmail(context.Background(), report)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.ErrorContains(t, err, "300")
	})

	t.Run("invalid params never reach postmark", func(t *testing.T) {
		t.Parallel()

		api := &mockAPI{}
		err := postmark.NewWithAPI(validConfig, api).SendEmail(context.Background(), email.SendEmailParams{})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		api.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})
}
