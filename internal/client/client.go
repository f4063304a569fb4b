// Package client is the per-tenant transport to the Jira Cloud REST API.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"jira-mcp/internal/config"
	"jira-mcp/internal/logging"
	"jira-mcp/internal/metrics"
	"jira-mcp/internal/registry"
)

const (
	serviceName     = "Jira"
	maxResponseSize = 10 << 20
)

// Options tunes a Client. The zero value gives one attempt, no rate limit
// and a 30s timeout.
type Options struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Burst             int
	// BaseURL overrides https://<domain>.
	BaseURL   string
	Transport http.RoundTripper
}

// OptionsFromConfig maps the jira section of the configuration.
func OptionsFromConfig(cfg config.JiraConfig) Options {
	return Options{
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        500 * time.Millisecond,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
}

// Client talks to one tenant's Jira site. It is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	tenant     string
	http       *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
}

func New(creds registry.Credentials, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	baseURL := creds.BaseURL()
	if opts.BaseURL != "" {
		baseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	return &Client{
		baseURL:    baseURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(creds.Email+":"+creds.APIToken)),
		tenant:     creds.Name(),
		http:       &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter:    rate.NewLimiter(limit, burst),
		attempts:   uint(max(opts.MaxRetries, 0)) + 1,
		retryDelay: opts.RetryDelay,
	}
}

// Tenant returns the name of the tenant the client acts for.
func (c *Client) Tenant() string {
	return c.tenant
}

// Get performs a GET request against endpoint, e.g. /rest/api/3/myself.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) GetJSON(ctx context.Context, endpoint string) (map[string]any, error) {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// PostJSON marshals payload, posts it and decodes the response object.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	resp, err := c.Post(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp)
}

// PutJSON marshals payload and puts it. Jira answers most updates with 204,
// in which case the returned map is empty.
func (c *Client) PutJSON(ctx context.Context, endpoint string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	resp, err := c.Put(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp)
}

func decodeObject(body []byte) (map[string]any, error) {
	result := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	return result, nil
}

// retryableFor returns the retry predicate for method. A POST creates
// something on every delivery, so it is only repeated when Jira refused it
// with a 429 or the request never left the client.
func retryableFor(method string) func(error) bool {
	if method != http.MethodPost {
		return IsRetryable
	}
	return func(err error) bool {
		var conn connError
		if errors.As(err, &conn) {
			return conn.notSent
		}
		return IsRateLimited(err)
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	entry := logging.FromContext(ctx).WithFields(log.Fields{"method": method, "endpoint": endpoint})

	var result []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return errors.Wrap(err, "rate limiter")
			}
			resp, err := c.once(ctx, method, endpoint, body)
			if err != nil {
				return err
			}
			result = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryableFor(method)),
		retry.OnRetry(func(n uint, err error) {
			entry.WithError(err).Warnf("Jira request failed (attempt %d), retrying", n+1)
		}),
	)
	if err != nil {
		entry.WithError(err).Debug("Jira request failed")
		return nil, err
	}
	return result, nil
}

func (c *Client) once(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordJiraRequest(method, 0)
		var opErr *net.OpError
		notSent := errors.As(err, &opErr) && opErr.Op == "dial"
		return nil, connError{err: errors.Wrapf(err, "failed to connect to %s", serviceName), notSent: notSent}
	}
	defer resp.Body.Close()
	metrics.RecordJiraRequest(method, resp.StatusCode)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, connError{err: errors.Wrap(err, "failed to read response")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// connError marks a failure before a complete response was received.
// notSent is set when the connection could not be dialed at all.
type connError struct {
	err     error
	notSent bool
}

func (e connError) Error() string { return e.err.Error() }
func (e connError) Unwrap() error { return e.err }
