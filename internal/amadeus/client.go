// Package amadeus implements the upstream travel-data provider client:
// OAuth2 client-credentials token lifecycle and bearer-authenticated calls.
package amadeus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/farewatch/farewatch/internal/shared"
)

const tokenPath = "/v1/security/oauth2/token"

// tokenExpirySkew is the window before expiry in which a cached token is
// treated as stale and refreshed instead of returned.
const tokenExpirySkew = 60 * time.Second

// Config carries the provider credentials and endpoint base.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

type accessToken struct {
	value     string
	expiresAt time.Time
}

// Client talks to the provider API. Safe for concurrent use; the token cache
// is the only shared state and refreshes are collapsed through singleflight.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
	clock      func() time.Time

	mu           sync.Mutex
	token        accessToken
	refreshGroup singleflight.Group
}

// NewClient constructs a provider client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		clock:      time.Now,
	}
}

// AccessToken returns a bearer token valid for at least the skew window.
// The cached token is reused without a network call while fresh; otherwise a
// client-credentials exchange runs and the result replaces the cache. A failed
// exchange leaves the prior cache untouched and reports a shared.AuthError.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if value, ok := c.cachedToken(); ok {
		return value, nil
	}
	result, err, _ := c.refreshGroup.Do("token", func() (any, error) {
		return c.refreshToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.value != "" && c.token.expiresAt.Sub(c.clock()) > tokenExpirySkew {
		return c.token.value, true
	}
	return "", false
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	// A caller queued behind a finished refresh can use the fresh token.
	if value, ok := c.cachedToken(); ok {
		return value, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.apiKey},
		"client_secret": {c.apiSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &shared.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &shared.AuthError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("token exchange rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", strings.TrimSpace(string(body))))
		return "", &shared.AuthError{Err: &shared.ProviderError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}}
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &shared.AuthError{Err: err}
	}
	if payload.AccessToken == "" {
		return "", &shared.AuthError{Err: errMissingAccessToken}
	}

	now := c.clock()
	c.mu.Lock()
	c.token = accessToken{
		value:     payload.AccessToken,
		expiresAt: now.Add(time.Duration(payload.ExpiresIn) * time.Second),
	}
	c.mu.Unlock()

	c.logger.Debug("provider token refreshed", slog.Int("expires_in", payload.ExpiresIn))
	return payload.AccessToken, nil
}

// Get performs a bearer-authenticated GET against the provider and decodes
// the JSON body into dest. Non-2xx answers become shared.ProviderError with
// the upstream detail message when one is present.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &shared.ProviderError{Detail: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		detail := errorDetail(body)
		c.logger.Warn("provider call failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("detail", detail))
		return &shared.ProviderError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &shared.ProviderError{StatusCode: resp.StatusCode, Detail: "malformed response body: " + err.Error()}
	}
	return nil
}

// errorDetail extracts the first upstream error detail from a provider error
// body, falling back to the raw payload.
func errorDetail(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		if parsed.Errors[0].Detail != "" {
			return parsed.Errors[0].Detail
		}
		if parsed.Errors[0].Title != "" {
			return parsed.Errors[0].Title
		}
	}
	return strings.TrimSpace(string(body))
}
