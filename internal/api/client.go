package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nhle/crmterm/internal/model"
)

// Session supplies the auth token for outgoing requests and is cleared
// when the backend answers 401.
type Session interface {
	Token() (string, error)
	Clear() error
}

// Client is a thin HTTP client for the CRM REST API. It attaches the
// session token to every request, handles JSON marshaling, retries with
// exponential backoff on HTTP 429 and centralizes 401 handling.
type Client struct {
	baseURL    string
	scheme     string
	session    Session
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int

	mu             sync.Mutex
	onUnauthorized func()
}

// NewClient creates a new CRM HTTP client from cfg. session may be nil for
// unauthenticated use (login, register).
func NewClient(cfg model.APIConfig, session Session) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = "Token"
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		scheme:  scheme,
		session: session,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: 3,
	}
}

// OnUnauthorized registers fn to run after a 401 has cleared the session.
// The application uses it to force navigation to the login view.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs an HTTP GET request with optional query parameters and
// unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body.
func (c *Client) Put(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Upload posts a single file as multipart/form-data under the given form
// field and unmarshals the JSON response.
func (c *Client) Upload(
	ctx context.Context,
	path string,
	field string,
	filename string,
	content io.Reader,
	result interface{},
) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copying %s into form: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	return c.send(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType(), result)
}

// do marshals body as JSON and hands off to send.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var data []byte
	contentType := ""
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		contentType = "application/json"
	}
	return c.send(ctx, method, path, data, contentType, result)
}

// send is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON deserialization.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	data []byte,
	contentType string,
	result interface{},
) error {
	target := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}

		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		if token := c.token(); token != "" {
			req.Header.Set("Authorization", c.scheme+" "+token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized()
			return &AuthError{Method: method, Path: path}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &Error{
				StatusCode: resp.StatusCode,
				Method:     method,
				Path:       path,
				Message:    extractMessage(respBody),
				Body:       respBody,
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	token, err := c.session.Token()
	if err != nil {
		return ""
	}
	return token
}

// handleUnauthorized clears the stored session and notifies the app.
func (c *Client) handleUnauthorized() {
	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			log.Printf("clearing session after 401: %v", err)
		}
	}

	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
