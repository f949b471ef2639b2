package mvp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/llenroc/mvpapi/common"
	"github.com/llenroc/mvpapi/common/model"
)

// DefaultBaseURL is the MVP API origin behind the Azure API gateway.
const DefaultBaseURL = "https://mvpapi.azure-api.net/mvp/api"

// SubscriptionKeyHeader is the gateway header identifying the calling
// application. Sent on every credentialed request.
const SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// ErrUnauthorized is returned when a call came back 401 and could not be
// recovered: either no refresh token was available or the refresh exchange
// itself failed. The accompanying value result is always the zero value, so
// callers that want the old "default on auth failure" behavior can ignore
// the error; callers that need to tell auth failure from an empty result
// check errors.Is against this sentinel.
var ErrUnauthorized = errors.New("mvp: unauthorized")

// MvpClient defines lower-level HTTP operations for the MVP API:
// the four verbs, header construction and the refresh-once-on-401 retry.
type MvpClient interface {
	GetJSON(ctx context.Context, endpoint string, entity interface{}, opts ...RequestOption) error
	GetBytes(ctx context.Context, endpoint string, opts ...RequestOption) ([]byte, error)
	PostJSON(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...RequestOption) error
	Put(ctx context.Context, endpoint string, body interface{}, opts ...RequestOption) (bool, error)
	Delete(ctx context.Context, endpoint string, opts ...RequestOption) (bool, error)
	Stats() CallStats
}

// CallStats are cumulative counters over the lifetime of a client.
type CallStats struct {
	Total    int64
	Success  int64
	NotFound int64
	Failed   int64
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	useCredentials bool
	overrideURL    string
	expectedStatus []int
}

// WithoutCredentials suppresses all credential headers (bearer token and
// subscription key) for public endpoints.
func WithoutCredentials() RequestOption {
	return func(o *requestOptions) { o.useCredentials = false }
}

// WithOverrideURL sends the request to an absolute URL instead of
// baseURL+endpoint. The endpoint argument is ignored entirely.
func WithOverrideURL(u string) RequestOption {
	return func(o *requestOptions) { o.overrideURL = u }
}

// WithExpectedStatus overrides the set of status codes treated as success.
func WithExpectedStatus(codes ...int) RequestOption {
	return func(o *requestOptions) { o.expectedStatus = codes }
}

type mvpClient struct {
	baseURL    string
	httpClient common.HttpClient
	creds      *common.CredentialStore
	authClient common.AuthClient
	identity   model.ClientIdentity
	logger     zerolog.Logger

	totalCalls    int64
	successCount  int64
	notFoundCount int64
	failCount     int64
}

// NewMvpClient creates a new MvpClient that will communicate with the MVP API.
// authClient may be nil, in which case 401 responses are never recovered.
func NewMvpClient(baseURL string, httpClient common.HttpClient, creds *common.CredentialStore, authClient common.AuthClient, identity model.ClientIdentity, logger zerolog.Logger) MvpClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if creds == nil {
		creds = common.NewCredentialStore(nil)
	}
	return &mvpClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		creds:      creds,
		authClient: authClient,
		identity:   identity,
		logger:     logger,
	}
}

// ---------------------------------------------------
// Implementation of MvpClient interface
// ---------------------------------------------------

// GetJSON retrieves JSON from an endpoint and unmarshals into entity.
func (c *mvpClient) GetJSON(ctx context.Context, endpoint string, entity interface{}, opts ...RequestOption) error {
	data, err := c.GetBytes(ctx, endpoint, opts...)
	if err != nil {
		return err
	}
	return unmarshalJSON(data, entity)
}

// GetBytes retrieves raw bytes from an endpoint.
func (c *mvpClient) GetBytes(ctx context.Context, endpoint string, opts ...RequestOption) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, opts, http.StatusOK)
}

// PostJSON sends a JSON-encoded body and, when entity is non-nil, unmarshals
// the response into it.
func (c *mvpClient) PostJSON(ctx context.Context, endpoint string, body interface{}, entity interface{}, opts ...RequestOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, endpoint, payload, opts,
		http.StatusOK, http.StatusCreated, http.StatusNoContent)
	if err != nil {
		return err
	}
	if entity == nil || len(data) == 0 {
		return nil
	}
	return unmarshalJSON(data, entity)
}

// Put sends a JSON-encoded body and reports whether the update was accepted.
func (c *mvpClient) Put(ctx context.Context, endpoint string, body interface{}, opts ...RequestOption) (bool, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("failed to encode request body: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPut, endpoint, payload, opts,
		http.StatusOK, http.StatusNoContent); err != nil {
		return false, err
	}
	return true, nil
}

// Delete reports whether the deletion was accepted.
func (c *mvpClient) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (bool, error) {
	if _, err := c.do(ctx, http.MethodDelete, endpoint, nil, opts,
		http.StatusOK, http.StatusNoContent); err != nil {
		return false, err
	}
	return true, nil
}

// Stats returns a snapshot of the call counters.
func (c *mvpClient) Stats() CallStats {
	return CallStats{
		Total:    atomic.LoadInt64(&c.totalCalls),
		Success:  atomic.LoadInt64(&c.successCount),
		NotFound: atomic.LoadInt64(&c.notFoundCount),
		Failed:   atomic.LoadInt64(&c.failCount),
	}
}

// do is the core method that actually performs the HTTP request, including
// the single refresh+retry on 401.
func (c *mvpClient) do(ctx context.Context, method, endpoint string, body []byte, opts []RequestOption, defaultStatus ...int) ([]byte, error) {
	ro := requestOptions{useCredentials: true, expectedStatus: defaultStatus}
	for _, opt := range opts {
		opt(&ro)
	}

	urlStr := ro.overrideURL
	if urlStr == "" {
		var err error
		if urlStr, err = c.buildURL(endpoint); err != nil {
			return nil, err
		}
	}

	// Execute request
	data, status, err := c.executeRequest(ctx, method, urlStr, body, ro.useCredentials)
	if err != nil {
		return nil, err
	}

	// if unauthorized, try exactly one refresh and re-execute the identical
	// request once. A failure of the second attempt is returned as-is.
	if status == http.StatusUnauthorized && ro.useCredentials {
		data, status, err = c.refreshAndRetry(ctx, method, urlStr, body)
		if err != nil {
			atomic.AddInt64(&c.totalCalls, 1)
			atomic.AddInt64(&c.failCount, 1)
			return nil, err
		}
	}

	// metrics
	atomic.AddInt64(&c.totalCalls, 1)
	switch {
	case status == http.StatusNotFound:
		atomic.AddInt64(&c.notFoundCount, 1)
	case status >= 200 && status < 300:
		atomic.AddInt64(&c.successCount, 1)
	default:
		atomic.AddInt64(&c.failCount, 1)
	}

	if !statusMatches(status, ro.expectedStatus) {
		return nil, &common.HTTPError{
			StatusCode: status,
			Body:       data,
		}
	}
	return data, nil
}

// refreshAndRetry performs the one-shot token refresh and, on success,
// replaces the stored credentials and re-executes the request. Refresh is
// never attempted more than once per call and never recurses.
func (c *mvpClient) refreshAndRetry(ctx context.Context, method, urlStr string, body []byte) ([]byte, int, error) {
	tok := c.creds.Token()
	if tok == nil || tok.RefreshToken == "" || c.authClient == nil {
		return nil, 0, fmt.Errorf("%w: no refresh token available", ErrUnauthorized)
	}

	c.logger.Debug().Str("method", method).Str("url", urlStr).Msg("access token rejected, attempting refresh")
	newTok, refreshErr := c.authClient.RefreshToken(ctx, tok.RefreshToken)
	if refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Msg("token refresh failed")
		return nil, 0, fmt.Errorf("%w: token refresh failed: %v", ErrUnauthorized, refreshErr)
	}
	if newTok == nil {
		return nil, 0, fmt.Errorf("%w: token refresh returned no credentials", ErrUnauthorized)
	}

	c.creds.Replace(newTok)
	return c.executeRequest(ctx, method, urlStr, body, true)
}

// executeRequest actually does the low-level HTTP. Headers are rebuilt from
// the current credential state on every attempt; nothing is cached between
// calls.
func (c *mvpClient) executeRequest(ctx context.Context, method, urlStr string, body []byte, useCredentials bool) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if useCredentials {
		req.Header.Set(SubscriptionKeyHeader, c.identity.SubscriptionKey)
		if tok := c.creds.Token(); tok != nil && tok.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %v", readErr)
	}
	return data, resp.StatusCode, nil
}

// buildURL joins baseURL + endpoint, preserving any query in the endpoint.
func (c *mvpClient) buildURL(endpoint string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}

func statusMatches(statusCode int, expected []int) bool {
	for _, s := range expected {
		if statusCode == s {
			return true
		}
	}
	return false
}

// unmarshalJSON helper
func unmarshalJSON(data []byte, out interface{}) error {
	return model.JSONUnmarshal(data, out)
}
