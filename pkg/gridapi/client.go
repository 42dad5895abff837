package gridapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config configures a gateway client.
type Config struct {
	// BaseURL is the gateway root, e.g. "https://gateway.example.org".
	BaseURL string

	// Token is the bearer token of an already-authenticated session.
	// Credential acquisition is out of scope; callers supply the token.
	Token string

	// Tenant is an optional tenant header value.
	Tenant string

	// Timeout bounds each HTTP request. Default: 30s.
	Timeout time.Duration

	// RateLimit is the maximum requests per second to the gateway.
	// Zero means unlimited.
	RateLimit float64

	// Logger receives request-level debug logging. Nil means no logging.
	Logger *zap.Logger
}

// Client talks to the gateway's JSON API.
//
// Client is safe for concurrent use. It implements JobAPI, AppAPI,
// SystemAPI and FileAPI.
type Client struct {
	baseURL string
	token   string
	tenant  string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a gateway client from cfg.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid gateway base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		tenant:  cfg.Tenant,
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result"`
}

// do issues one request and decodes the result envelope into out.
//
// Non-2xx responses are mapped to the package sentinels and wrapped in an
// APIError carrying the raw body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Op: op, Resource: path, Err: err}
		}
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Resource: path, Err: fmt.Errorf("encode request: %w", err)}
		}
		payload = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return &APIError{Op: op, Resource: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenant != "" {
		req.Header.Set("X-Gateway-Tenant", c.tenant)
	}

	c.logger.Debug("gateway request", zap.String("op", op), zap.String("method", method), zap.String("path", path))

	resp, err := c.hc.Do(req)
	if err != nil {
		return &APIError{Op: op, Resource: path, Err: fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &APIError{Op: op, Resource: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Op:         op,
			Resource:   path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Op: op, Resource: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	result := env.Result
	if len(result) == 0 {
		// Some deployments return the resource unwrapped.
		result = raw
	}
	if err := json.Unmarshal(result, out); err != nil {
		return &APIError{Op: op, Resource: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

func classifyStatus(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest:
		return ErrBadRequest
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return ErrThrottled
	case code >= 500:
		return ErrGatewayUnavailable
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

// Submit sends a job request to the gateway.
//
// Rejections keep the original request and raw response body in the
// returned SubmissionError.
func (c *Client) Submit(ctx context.Context, jobReq *JobRequest) (*SubmitResponse, error) {
	if jobReq == nil {
		return nil, fmt.Errorf("job request is nil")
	}
	var out SubmitResponse
	if err := c.do(ctx, "Submit", http.MethodPost, "/v3/jobs/submit", nil, jobReq, &out); err != nil {
		var apiErr *APIError
		if asAPIError(err, &apiErr) {
			return nil, &SubmissionError{
				Request:    jobReq,
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Body,
				Err:        apiErr.Err,
			}
		}
		return nil, &SubmissionError{Request: jobReq, Err: err}
	}
	if out.UUID == "" {
		return nil, &SubmissionError{Request: jobReq, Err: fmt.Errorf("gateway returned no job uuid")}
	}
	c.logger.Info("job submitted", zap.String("job_uuid", out.UUID), zap.String("app_id", jobReq.AppID))
	return &out, nil
}

// GetStatus returns the current status for jobUUID.
func (c *Client) GetStatus(ctx context.Context, jobUUID string) (JobStatus, error) {
	var out struct {
		Status JobStatus `json:"status"`
	}
	path := "/v3/jobs/" + url.PathEscape(jobUUID) + "/status"
	if err := c.do(ctx, "GetStatus", http.MethodGet, path, nil, nil, &out); err != nil {
		return "", withResource(err, jobUUID)
	}
	return out.Status, nil
}

// GetDetails returns a snapshot of the job record for jobUUID.
func (c *Client) GetDetails(ctx context.Context, jobUUID string) (*JobDetails, error) {
	var out JobDetails
	path := "/v3/jobs/" + url.PathEscape(jobUUID)
	if err := c.do(ctx, "GetDetails", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, withResource(err, jobUUID)
	}
	return &out, nil
}

// GetHistory returns the job's history, oldest first.
func (c *Client) GetHistory(ctx context.Context, jobUUID string) ([]HistoryEvent, error) {
	var out []HistoryEvent
	path := "/v3/jobs/" + url.PathEscape(jobUUID) + "/history"
	if err := c.do(ctx, "GetHistory", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, withResource(err, jobUUID)
	}
	return out, nil
}

// Cancel requests cancellation of jobUUID.
func (c *Client) Cancel(ctx context.Context, jobUUID string) error {
	path := "/v3/jobs/" + url.PathEscape(jobUUID) + "/cancel"
	if err := c.do(ctx, "Cancel", http.MethodPost, path, nil, nil, nil); err != nil {
		return withResource(err, jobUUID)
	}
	return nil
}

// GetApp returns an app template. Empty version means latest.
func (c *Client) GetApp(ctx context.Context, appID, version string) (*AppTemplate, error) {
	var out AppTemplate
	path := "/v3/apps/" + url.PathEscape(appID)
	if version != "" {
		path += "/" + url.PathEscape(version)
	}
	if err := c.do(ctx, "GetApp", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, withResource(err, appID)
	}
	return &out, nil
}

// SearchApps returns shallow summaries of apps whose id matches term.
func (c *Client) SearchApps(ctx context.Context, term string) ([]AppSummary, error) {
	q := url.Values{}
	if term != "" {
		q.Set("search", fmt.Sprintf("(id.like.*%s*)", term))
	}
	q.Set("select", "id,version,owner")
	var out []AppSummary
	if err := c.do(ctx, "SearchApps", http.MethodGet, "/v3/apps", q, nil, &out); err != nil {
		return nil, withResource(err, term)
	}
	return out, nil
}

// SearchSystems returns candidate storage systems for a project lookup.
func (c *Client) SearchSystems(ctx context.Context, term, idPrefix string) ([]SystemSummary, error) {
	q := url.Values{}
	q.Set("search", fmt.Sprintf("description.like.%%%s%%&id.like.%s*", term, idPrefix))
	q.Set("select", "id,owner,description")
	q.Set("limit", "10")
	var out []SystemSummary
	if err := c.do(ctx, "SearchSystems", http.MethodGet, "/v3/systems", q, nil, &out); err != nil {
		return nil, withResource(err, term)
	}
	return out, nil
}

// GetSystem returns a single storage system by exact id.
func (c *Client) GetSystem(ctx context.Context, systemID string) (*SystemSummary, error) {
	var out SystemSummary
	path := "/v3/systems/" + url.PathEscape(systemID)
	if err := c.do(ctx, "GetSystem", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, withResource(err, systemID)
	}
	return &out, nil
}

// ListFiles returns a single page of a directory listing on systemID.
func (c *Client) ListFiles(ctx context.Context, systemID, path string, limit, offset int) ([]FileInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	p := "/v3/files/ops/" + url.PathEscape(systemID) + "/" + strings.TrimLeft(encodeListPath(path), "/")
	var out []FileInfo
	if err := c.do(ctx, "ListFiles", http.MethodGet, p, q, nil, &out); err != nil {
		return nil, withResource(err, systemID+"/"+path)
	}
	return out, nil
}

// encodeListPath escapes each segment while preserving separators.
func encodeListPath(p string) string {
	segs := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// withResource rewrites the Resource field of an APIError to the domain
// identifier instead of the URL path.
func withResource(err error, resource string) error {
	var apiErr *APIError
	if asAPIError(err, &apiErr) {
		apiErr.Resource = resource
	}
	return err
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

// Interface conformance checks.
var (
	_ JobAPI    = (*Client)(nil)
	_ AppAPI    = (*Client)(nil)
	_ SystemAPI = (*Client)(nil)
	_ FileAPI   = (*Client)(nil)
)
