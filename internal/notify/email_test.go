package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardle-dev/lookout/internal/models"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return f.err
}

func TestEmailChannel_DownMessage(t *testing.T) {
	mailer := &fakeMailer{}
	ch := NewEmailChannel(mailer, "owner@example.com")

	event := Event{
		Monitor:   models.Monitor{Name: "API", URL: "https://api.example.com"},
		OldStatus: models.StatusUp,
		NewStatus: models.StatusDown,
		At:        time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}

	require.NoError(t, ch.Notify(context.Background(), event))

	assert.Equal(t, "owner@example.com", mailer.to)
	assert.Equal(t, "Monitor 'API' is DOWN", mailer.subject)
	assert.Contains(t, mailer.body, "API")
	assert.Contains(t, mailer.body, "https://api.example.com")
	assert.Contains(t, mailer.body, "DOWN")
	assert.Contains(t, mailer.body, "2026-03-01")
}

func TestEmailChannel_UpMessage(t *testing.T) {
	mailer := &fakeMailer{}
	ch := NewEmailChannel(mailer, "owner@example.com")

	event := Event{
		Monitor:   models.Monitor{Name: "API", URL: "https://api.example.com"},
		OldStatus: models.StatusDown,
		NewStatus: models.StatusUp,
		At:        time.Now(),
	}

	require.NoError(t, ch.Notify(context.Background(), event))
	assert.Equal(t, "Monitor 'API' is UP", mailer.subject)
	assert.Contains(t, mailer.body, "UP")
}

func TestEmailChannel_SendFailurePropagates(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	ch := NewEmailChannel(mailer, "owner@example.com")

	err := ch.Notify(context.Background(), Event{
		Monitor:   models.Monitor{Name: "API"},
		OldStatus: models.StatusUp,
		NewStatus: models.StatusDown,
		At:        time.Now(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner@example.com")
}
