// Package checker performs single HTTP probes against monitored URLs and
// classifies the result. It never returns an error: every execution path,
// including panics from the HTTP stack, yields a classified Outcome.
package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wardle-dev/lookout/internal/logger"
	"github.com/wardle-dev/lookout/internal/models"
)

// DefaultTimeout bounds a single probe, connection establishment included.
const DefaultTimeout = 30 * time.Second

// Outcome is the classified result of one probe, ready to be persisted as a
// Check by the orchestrator. ResponseTimeMs is nil unless an HTTP response
// was received.
type Outcome struct {
	Status         models.CheckStatus
	StatusCode     *int
	ResponseTimeMs *int64
	ErrorMessage   *string
}

// HTTPChecker probes URLs with HEAD requests, falling back to GET when the
// target rejects HEAD. Redirects are not followed: a redirect response's own
// status code is what gets classified.
type HTTPChecker struct {
	client  *http.Client
	timeout time.Duration
	log     *logrus.Entry
}

// Option customizes an HTTPChecker.
type Option func(*HTTPChecker)

// WithTimeout overrides the probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPChecker) {
		c.timeout = d
	}
}

// New builds a checker with the default 30 second timeout.
func New(opts ...Option) *HTTPChecker {
	c := &HTTPChecker{
		timeout: DefaultTimeout,
		log:     logger.WithComponent("checker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = &http.Client{
		Timeout: c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return c
}

// Execute runs exactly one probe against url and classifies it.
func (c *HTTPChecker) Execute(ctx context.Context, url string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Unexpected error: %v", r)
			c.log.WithField("url", url).Error(msg)
			out = Outcome{Status: models.CheckFailed, ErrorMessage: &msg}
		}
	}()

	start := time.Now()
	resp, err := c.do(ctx, http.MethodHead, url)

	// Some servers refuse HEAD outright; retry those with a full GET so a
	// healthy site is not reported down.
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		drain(resp)
		start = time.Now()
		resp, err = c.do(ctx, http.MethodGet, url)
	}

	if err != nil {
		msg := c.classifyNetworkError(err)
		return Outcome{Status: models.CheckFailed, ErrorMessage: &msg}
	}
	defer drain(resp)

	elapsed := time.Since(start).Milliseconds()
	code := resp.StatusCode

	if code >= 200 && code < 300 {
		return Outcome{
			Status:         models.CheckSuccess,
			StatusCode:     &code,
			ResponseTimeMs: &elapsed,
		}
	}

	msg := fmt.Sprintf("HTTP %d response received", code)
	return Outcome{
		Status:         models.CheckFailed,
		StatusCode:     &code,
		ResponseTimeMs: &elapsed,
		ErrorMessage:   &msg,
	}
}

func (c *HTTPChecker) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Lookout-Monitor/1.0")
	return c.client.Do(req)
}

// classifyNetworkError turns a transport error into the human-readable
// message stored on the failed Check.
func (c *HTTPChecker) classifyNetworkError(err error) string {
	if isTimeout(err) {
		return fmt.Sprintf("Connection timeout after %d seconds", int(c.timeout.Seconds()))
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "Unable to resolve hostname"
	}

	if isCertificateError(err) {
		return "SSL certificate validation failed"
	}

	return fmt.Sprintf("Network error: %s", err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		recordHeader tls.RecordHeaderError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) ||
		errors.As(err, &recordHeader)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
