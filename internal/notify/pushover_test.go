package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardle-dev/lookout/internal/models"
)

func pushoverEvent(newStatus models.MonitorStatus) Event {
	old := models.StatusUp
	if newStatus == models.StatusUp {
		old = models.StatusDown
	}
	return Event{
		Monitor: models.Monitor{
			ID:   "mon-1",
			Name: "Homepage",
			URL:  "https://example.com",
		},
		OldStatus: old,
		NewStatus: newStatus,
		At:        time.Now(),
	}
}

func TestPushoverChannel_DownIsEmergencyPriority(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"status":1,"request":"abc"}`))
	}))
	defer srv.Close()

	ch := NewPushoverChannel(
		ResolvedCredential{Value: validToken, Source: SourceStored},
		ResolvedCredential{Value: validKey, Source: SourceStored},
		srv.URL,
		"https://lookout.example.com",
	)

	require.NoError(t, ch.Notify(context.Background(), pushoverEvent(models.StatusDown)))

	assert.Equal(t, validToken, form["token"][0])
	assert.Equal(t, validKey, form["user"][0])
	assert.Equal(t, "Monitor 'Homepage' is DOWN", form["message"][0])
	assert.Equal(t, "2", form["priority"][0])
	assert.Equal(t, "3600", form["expire"][0])
	assert.Equal(t, "60", form["retry"][0])
	assert.Equal(t, "https://lookout.example.com/monitors/mon-1", form["url"][0])
	assert.Equal(t, "View Monitor", form["url_title"][0])
}

func TestPushoverChannel_UpIsNormalPriority(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	ch := NewPushoverChannel(
		ResolvedCredential{Value: validToken},
		ResolvedCredential{Value: validKey},
		srv.URL,
		"https://lookout.example.com",
	)

	require.NoError(t, ch.Notify(context.Background(), pushoverEvent(models.StatusUp)))

	assert.Equal(t, "Monitor 'Homepage' has RECOVERED", form["message"][0])
	assert.Equal(t, "0", form["priority"][0])
	assert.Empty(t, form["expire"])
	assert.Empty(t, form["retry"])
}

func TestPushoverChannel_ProviderReportedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
	}))
	defer srv.Close()

	ch := NewPushoverChannel(ResolvedCredential{Value: validToken}, ResolvedCredential{Value: validKey}, srv.URL, "")

	err := ch.Notify(context.Background(), pushoverEvent(models.StatusDown))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user identifier is invalid")
}

func TestPushoverChannel_HTTPErrorMasksCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewPushoverChannel(ResolvedCredential{Value: validToken}, ResolvedCredential{Value: validKey}, srv.URL, "")

	err := ch.Notify(context.Background(), pushoverEvent(models.StatusDown))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), validToken)
	assert.NotContains(t, err.Error(), validKey)
}
