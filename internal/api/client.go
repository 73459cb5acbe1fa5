package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the recipe backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	mu    sync.RWMutex
	token *oauth2.Token
}

// Options configures a [Client]. Zero values select defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// RateLimit is the maximum requests per second; 0 disables limiting.
	RateLimit float64
	Logger    *log.Logger
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return c
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken sets the bearer token sent with every request. An empty token clears it.
func (c *Client) SetToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if accessToken == "" {
		c.token = nil
		return
	}
	c.token = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}

// Token returns the current access token, or "" when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

func (c *Client) requireToken() error {
	if c.Token() == "" {
		return fmt.Errorf("%w: login required", shared.ErrNotAuthenticated)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// endpoint joins path and query onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// roundTrip performs req with the shared headers and reads the whole body. Only transport
// failures are returned as errors; they wrap [shared.ErrNetwork].
func (c *Client) roundTrip(ctx context.Context, req *http.Request) (int, http.Header, []byte, error) {
	if err := c.wait(ctx); err != nil {
		return 0, nil, nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	c.mu.RLock()
	if c.token != nil {
		c.token.SetAuthHeader(req)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: %s %s: %w", shared.ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrNetwork, err)
	}

	c.logger.Debug("api request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "took", time.Since(start))
	return resp.StatusCode, resp.Header, body, nil
}

// send returns the body of a 2xx response and turns any other status into an [*Error].
func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, error) {
	status, _, body, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, newError(status, req.Method, req.URL.Path, body)
	}
	return body, nil
}

// do sends a JSON request. in is encoded as the body when non-nil; out receives the decoded
// response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

// RawResponse is an undecoded backend response, used by the raw request command.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an arbitrary request and returns the response whatever its status.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) (*RawResponse, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	status, headers, data, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	raw := &RawResponse{StatusCode: status, Headers: headers, Body: data}
	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		raw.IsJSON = true
		raw.JSONData = jsonData
	}
	return raw, nil
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("%w: health status %q", shared.ErrServiceUnavailable, out.Status)
	}
	return nil
}
