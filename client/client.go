package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DenisMSouza/abtest-sub000/internal/logger"
	"github.com/DenisMSouza/abtest-sub000/internal/metrics"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// DefaultTimeout bounds each backend request when no custom timeout or
// HTTP client is configured.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP persistence client for the assignment backend.
//
// All methods honor context cancellation and wrap transport-level and
// non-2xx failures with types.ErrNetwork.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     types.Logger
	metrics    types.MetricsCollector
}

var (
	_ types.PersistenceClient = (*Client)(nil)
	_ types.ExperimentSource  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout on the default HTTP client.
// Ignored when WithHTTPClient is also supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely, e.g. to add
// custom transports or instrumentation.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l types.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics sets the collector recording backend request outcomes.
func WithMetrics(m types.MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a backend client.
//
// Parameters:
//   - baseURL: Backend base URL without trailing slash, e.g. "http://abtest:8080"
//   - opts: Optional configuration
//
// Returns:
//   - *Client: Initialized client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.NewNop(),
		metrics:    metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// identityQuery renders the identity as query parameters. Exactly one of
// userId/sessionId is sent; userID takes precedence when both are set.
func identityQuery(identity types.Identity) url.Values {
	q := url.Values{}
	if identity.UserID != "" {
		q.Set("userId", identity.UserID)
	} else if identity.SessionID != "" {
		q.Set("sessionId", identity.SessionID)
	}

	return q
}

// ReadAssignment fetches the stored assignment for a visitor.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - experimentID: Experiment to look up
//   - identity: Visitor identity (user or session)
//
// Returns:
//   - *types.Assignment: The stored assignment, nil when none exists
//   - error: Request failure wrapping types.ErrNetwork
func (c *Client) ReadAssignment(ctx context.Context, experimentID string, identity types.Identity) (*types.Assignment, error) {
	endpoint := fmt.Sprintf("%s/internal/experiments/%s/variation?%s",
		c.baseURL, url.PathEscape(experimentID), identityQuery(identity).Encode())

	body, _, err := c.do(ctx, http.MethodGet, "read", endpoint, nil)
	if err != nil {
		return nil, err
	}

	// The backend answers with a list: empty means no assignment yet.
	var assignments []types.Assignment
	if err := json.Unmarshal(body, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode assignment response: %w", err)
	}
	if len(assignments) == 0 {
		return nil, nil
	}

	return &assignments[0], nil
}

// WriteAssignment persists a freshly sampled assignment.
//
// The backend enforces first-write-wins per (experiment, visitor); a
// duplicate write is acknowledged without error, so concurrent replicas
// converge on whichever record landed first.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - experimentID: Experiment the assignment belongs to
//   - identity: Visitor identity (user or session)
//   - variant: Variant name to persist
//
// Returns:
//   - error: Request failure wrapping types.ErrNetwork
func (c *Client) WriteAssignment(ctx context.Context, experimentID string, identity types.Identity, variant string) error {
	endpoint := fmt.Sprintf("%s/internal/experiments/%s/variation?%s",
		c.baseURL, url.PathEscape(experimentID), identityQuery(identity).Encode())

	payload, err := json.Marshal(map[string]string{
		"experimentId": experimentID,
		"variation":    variant,
	})
	if err != nil {
		return fmt.Errorf("failed to encode assignment: %w", err)
	}

	if _, _, err := c.do(ctx, http.MethodPost, "write", endpoint, payload); err != nil {
		return err
	}

	return nil
}

// TrackSuccess records a success event for an experiment.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - experimentID: Experiment the event belongs to
//   - event: Success event payload
//
// Returns:
//   - error: Request failure wrapping types.ErrNetwork
func (c *Client) TrackSuccess(ctx context.Context, experimentID string, event types.SuccessEvent) error {
	endpoint := fmt.Sprintf("%s/experiments/%s/success", c.baseURL, url.PathEscape(experimentID))

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode success event: %w", err)
	}

	if _, _, err := c.do(ctx, http.MethodPost, "success", endpoint, payload); err != nil {
		return err
	}

	return nil
}

// GetExperiment fetches an experiment definition from the backend.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - id: Experiment identifier
//
// Returns:
//   - *types.Experiment: The experiment definition
//   - error: types.ErrExperimentNotFound for 404, otherwise wraps types.ErrNetwork
func (c *Client) GetExperiment(ctx context.Context, id string) (*types.Experiment, error) {
	endpoint := fmt.Sprintf("%s/experiments/%s", c.baseURL, url.PathEscape(id))

	body, status, err := c.do(ctx, http.MethodGet, "experiment", endpoint, nil)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("experiment %s: %w", id, types.ErrExperimentNotFound)
	}
	if err != nil {
		return nil, err
	}

	var exp types.Experiment
	if err := json.Unmarshal(body, &exp); err != nil {
		return nil, fmt.Errorf("failed to decode experiment %s: %w", id, err)
	}

	return &exp, nil
}

// do issues a request and returns the response body and status code.
//
// Transport errors and non-2xx statuses return an error wrapping
// types.ErrNetwork; the status code is still returned so callers can
// special-case e.g. 404.
func (c *Client) do(ctx context.Context, method, op, endpoint string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		c.metrics.RecordBackendRequest(op, false, duration)
		c.logger.Warn("backend request failed", "op", op, "endpoint", endpoint, "error", err)

		return nil, 0, fmt.Errorf("%s %s: %w: %w", method, endpoint, types.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordBackendRequest(op, false, duration)
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w: %w", types.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordBackendRequest(op, false, duration)
		c.logger.Warn("backend returned error status",
			"op", op, "endpoint", endpoint, "status", resp.StatusCode)

		return body, resp.StatusCode, fmt.Errorf("%s %s: unexpected status %d: %w",
			method, endpoint, resp.StatusCode, types.ErrNetwork)
	}

	c.metrics.RecordBackendRequest(op, true, duration)
	c.logger.Debug("backend request completed", "op", op, "status", resp.StatusCode)

	return body, resp.StatusCode, nil
}
