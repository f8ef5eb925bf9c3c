// Package backend is the HTTP client for the licensing backend that owns
// persons, applications, reference data and the card print queue.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"dladmin/internal/lookup"
	"dladmin/internal/person"
	"dladmin/internal/printqueue"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/requestcontext"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
	maxErrorBody         = 64 << 10
)

// Config configures the backend client.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client calls the licensing backend. Transport failures and 5xx responses
// are retried with backoff; 4xx responses are returned immediately.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *retryablehttp.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes retry logging through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

// New builds a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	// Keep the final response so its error body can be decoded.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil

	c := &Client{baseURL: base, apiKey: cfg.APIKey, http: rc}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger != nil {
		rc.Logger = retryablehttp.LeveledLogger(c.logger)
	}
	return c, nil
}

// CreateApplication submits a new application. key is sent as the
// idempotency key so a retried POST cannot create a second application.
func (c *Client) CreateApplication(ctx context.Context, key string, in ApplicationCreate) (*Application, error) {
	var out Application
	if err := c.do(ctx, http.MethodPost, "/applications", nil, in, &out, key); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPersonLicenses returns the licences and permits already issued to the
// person. The backend answers with system_licenses; older deployments used
// licenses.
func (c *Client) GetPersonLicenses(ctx context.Context, personID id.PersonID) ([]person.ExistingLicense, error) {
	var out struct {
		SystemLicenses []person.ExistingLicense `json:"system_licenses"`
		Licenses       []person.ExistingLicense `json:"licenses"`
	}
	if err := c.do(ctx, http.MethodGet, "/persons/"+personID.String()+"/licenses", nil, nil, &out, ""); err != nil {
		return nil, err
	}
	switch {
	case out.SystemLicenses != nil:
		return out.SystemLicenses, nil
	case out.Licenses != nil:
		return out.Licenses, nil
	default:
		return []person.ExistingLicense{}, nil
	}
}

// StoreBiometricData attaches the biometric capture to an application.
func (c *Client) StoreBiometricData(ctx context.Context, appID id.ApplicationID, data BiometricData) error {
	return c.do(ctx, http.MethodPost, "/applications/"+appID.String()+"/biometrics", nil, data, nil, "")
}

// UploadPoliceDocument attaches the police clearance certificate to an application.
func (c *Client) UploadPoliceDocument(ctx context.Context, appID id.ApplicationID, doc PoliceDocument) error {
	return c.do(ctx, http.MethodPost, "/applications/"+appID.String()+"/police-documents", nil, doc, nil, "")
}

// GetLocations returns the issuing offices.
func (c *Client) GetLocations(ctx context.Context) ([]lookup.Location, error) {
	var out []lookup.Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllLookups returns every reference list keyed by name.
func (c *Client) GetAllLookups(ctx context.Context) (lookup.Lookups, error) {
	out := lookup.Lookups{}
	if err := c.do(ctx, http.MethodGet, "/lookups", nil, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPrintJobs returns the print jobs, optionally restricted to one location.
func (c *Client) ListPrintJobs(ctx context.Context, location id.LocationID) ([]printqueue.Job, error) {
	q := url.Values{}
	if !location.IsNil() {
		q.Set("location_id", location.String())
	}
	var out []printqueue.Job
	if err := c.do(ctx, http.MethodGet, "/print-jobs", q, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, idempotencyKey string) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var raw any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode backend request")
		}
		raw = b
	}

	req, err := retryablehttp.NewRequest(method, u.String(), raw)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build backend request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if rid := requestcontext.RequestID(ctx); rid != "" {
		req.Header.Set(headerRequestID, rid)
	}
	if idempotencyKey != "" {
		req.Header.Set(headerIdempotencyKey, idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "licensing backend timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "licensing backend unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invalid response from licensing backend")
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(b) > 0 {
		if jsonErr := json.Unmarshal(b, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(b))
		}
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
