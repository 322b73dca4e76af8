package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wardle-dev/lookout/internal/models"
)

// Pushover emergency-priority messages must carry expire/retry parameters.
const (
	pushoverPriorityNormal    = 0
	pushoverPriorityEmergency = 2
	pushoverExpireSeconds     = 3600
	pushoverRetrySeconds      = 60
)

// PushoverChannel delivers a transition as a form POST to the Pushover
// message API. Down transitions go out as emergency priority, recoveries as
// normal priority.
type PushoverChannel struct {
	token    ResolvedCredential
	userKey  ResolvedCredential
	endpoint string
	baseURL  string
	client   *http.Client
}

func NewPushoverChannel(token, userKey ResolvedCredential, endpoint, baseURL string) *PushoverChannel {
	return &PushoverChannel{
		token:    token,
		userKey:  userKey,
		endpoint: endpoint,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PushoverChannel) Name() string { return "pushover" }

func (p *PushoverChannel) Notify(ctx context.Context, event Event) error {
	form := url.Values{}
	form.Set("token", p.token.Value)
	form.Set("user", p.userKey.Value)
	form.Set("title", fmt.Sprintf("Lookout: %s", event.Monitor.Name))
	form.Set("url", fmt.Sprintf("%s/monitors/%s", strings.TrimRight(p.baseURL, "/"), event.Monitor.ID))
	form.Set("url_title", "View Monitor")

	if event.NewStatus == models.StatusDown {
		form.Set("message", fmt.Sprintf("Monitor '%s' is DOWN", event.Monitor.Name))
		form.Set("priority", fmt.Sprintf("%d", pushoverPriorityEmergency))
		form.Set("expire", fmt.Sprintf("%d", pushoverExpireSeconds))
		form.Set("retry", fmt.Sprintf("%d", pushoverRetrySeconds))
	} else {
		form.Set("message", fmt.Sprintf("Monitor '%s' has RECOVERED", event.Monitor.Name))
		form.Set("priority", fmt.Sprintf("%d", pushoverPriorityNormal))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request (user %s): %w", Mask(p.userKey.Value), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned status %d (token %s)", resp.StatusCode, Mask(p.token.Value))
	}

	// The API reports success inside the JSON body as status == 1.
	var body struct {
		Status int      `json:"status"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode pushover response: %w", err)
	}
	if body.Status != 1 {
		return fmt.Errorf("pushover rejected message: %s", strings.Join(body.Errors, "; "))
	}

	return nil
}
