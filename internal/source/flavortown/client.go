// Package flavortown is the HTTP client for the upstream project platform.
package flavortown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"devlog_notifier/internal/domain"
)

var (
	// ErrUnauthorized means the bearer token was rejected. Not retried; the
	// caller disables the owning subscription.
	ErrUnauthorized = errors.New("flavortown: unauthorized")
	// ErrNotFound means the requested project or devlog does not exist.
	ErrNotFound = errors.New("flavortown: not found")
)

// StatusError carries any other non-2xx response code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flavortown: unexpected status %d", e.Code)
}

// Config holds client configuration. The token is per-subscription, so one
// client exists per API key.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", "flavortown"),
	}
}

// GetProject fetches a project's metadata, including its devlog id sequence.
func (c *Client) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	url := fmt.Sprintf("%s/projects/%d", c.baseURL, projectID)

	var resp projectResponse
	if err := c.getWithRetry(ctx, url, &resp); err != nil {
		return nil, err
	}

	return &domain.Project{
		ID:          resp.ID,
		Title:       resp.Title,
		Description: resp.Description,
		DevlogIDs:   resp.DevlogIDs,
		ShipStatus:  domain.ParseShipStatus(resp.ShipStatus),
	}, nil
}

// GetDevlog fetches a single devlog body.
func (c *Client) GetDevlog(ctx context.Context, projectID, devlogID int64) (*domain.Devlog, error) {
	url := fmt.Sprintf("%s/projects/%d/devlogs/%d", c.baseURL, projectID, devlogID)

	var resp devlogResponse
	if err := c.getWithRetry(ctx, url, &resp); err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339, resp.CreatedAt)
	if err != nil {
		c.logger.Warn("failed to parse devlog timestamp",
			"devlog_id", resp.ID,
			"created_at", resp.CreatedAt,
		)
		createdAt = time.Time{}
	}

	return &domain.Devlog{
		ID:              resp.ID,
		Body:            resp.Body,
		DurationSeconds: resp.DurationSeconds,
		CreatedAt:       createdAt,
	}, nil
}

func (c *Client) getWithRetry(ctx context.Context, url string, out any) error {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.doRequest(ctx, url, out)
		if err == nil {
			return nil
		}
		// 401 and 404 are definitive, retrying cannot change them.
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
			return err
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "DevlogNotifier/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
