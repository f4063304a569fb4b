package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	credentialsPath = "/v1/credentials"
	apiKeyHeader    = "X-API-Key"
	maxBodySize     = 64 << 10
)

// HTTPResolver asks a registry service for the credentials of a key.
// Transport failures and 5xx answers are retried; 401, 403 and 404 mean the
// key is unknown.
type HTTPResolver struct {
	baseURL  string
	token    string
	client   *http.Client
	attempts uint
	delay    time.Duration
}

// HTTPOption customises an HTTPResolver.
type HTTPOption func(*HTTPResolver)

// WithRetry sets the number of attempts and the base delay between them.
func WithRetry(attempts uint, delay time.Duration) HTTPOption {
	return func(r *HTTPResolver) {
		r.attempts = max(attempts, 1)
		r.delay = delay
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPResolver) {
		r.client = c
	}
}

func NewHTTPResolver(baseURL, token string, timeout time.Duration, opts ...HTTPOption) *HTTPResolver {
	r := &HTTPResolver{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		client:   &http.Client{Timeout: timeout},
		attempts: 3,
		delay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HTTPResolver) Resolve(ctx context.Context, apiKey string) (*Credentials, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var creds *Credentials
	err := retry.Do(
		func() error {
			c, err := r.fetch(ctx, apiKey)
			if err != nil {
				return err
			}
			creds = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("registry lookup failed (attempt %d), retrying", n+1)
		}),
	)
	switch {
	case err == nil:
		return creds, nil
	case errors.Is(err, ErrUnknownAPIKey), ctx.Err() != nil:
		return nil, err
	default:
		return nil, errors.Wrap(ErrRegistryUnavailable, err.Error())
	}
}

// transientError marks a failure worth retrying.
type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

func (r *HTTPResolver) fetch(ctx context.Context, apiKey string) (*Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+credentialsPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building registry request")
	}
	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, transientError{errors.Wrap(err, "contacting registry")}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transientError{errors.Wrap(err, "reading registry response")}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnknownAPIKey
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return nil, transientError{errors.Errorf("registry returned HTTP %d", resp.StatusCode)}
	default:
		return nil, errors.Errorf("registry returned HTTP %d", resp.StatusCode)
	}

	var creds Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, errors.Wrap(err, "parsing registry response")
	}
	if err := creds.Validate(); err != nil {
		return nil, errors.Wrap(err, "registry returned invalid credentials")
	}
	return &creds, nil
}
