// Package tmdb is a client for The Movie Database REST API covering the
// movie search, movie detail and poster image endpoints cinepost needs.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Nomadcxx/cinepost/internal/retry"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	posterSize          = "w500"
)

// APIError is a non-2xx response from TMDB.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error (status %d): %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the error is an HTTP 429.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Config holds TMDB client configuration.
type Config struct {
	APIKey         string
	BaseURL        string
	ImageBaseURL   string
	Language       string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	RateDelay      time.Duration
}

// Client talks to the TMDB API.
type Client struct {
	apiKey         string
	baseURL        string
	imageBaseURL   string
	language       string
	maxRetries     int
	initialBackoff time.Duration
	rateDelay      time.Duration
	httpClient     *http.Client
}

// NewClient creates a TMDB client. Zero-value config fields fall back to
// sensible defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		imageBaseURL:   cfg.ImageBaseURL,
		language:       cfg.Language,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		rateDelay:      cfg.RateDelay,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
	}
}

// get issues an authenticated GET against the API and decodes the JSON
// response into result. Transient failures and 429s are retried with
// exponential backoff.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	return retry.Do(ctx, func() error {
		if c.rateDelay > 0 {
			select {
			case <-time.After(c.rateDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			msg := apiMessage(body)
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}

		if result != nil {
			if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
		}
		return nil
	}, c.maxRetries, c.initialBackoff)
}

func apiMessage(body []byte) string {
	var status struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &status); err == nil && status.StatusMessage != "" {
		return status.StatusMessage
	}
	return "unknown error"
}

// posterURL builds the full image URL for a poster path, or "" when the
// movie has no poster.
func (c *Client) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + posterSize + path
}
