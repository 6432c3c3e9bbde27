// Package notify posts messages to the chat platform over its Web API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"devlog_notifier/internal/markdown"
)

// PostOptions tunes a single message post.
type PostOptions struct {
	SuppressLinkPreview bool
}

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Slack posts block messages via chat.postMessage with a bot token.
type Slack struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *slog.Logger
}

func NewSlack(cfg Config, logger *slog.Logger) *Slack {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Slack{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		logger:     logger.With("component", "slack"),
	}
}

type postMessageRequest struct {
	Channel     string           `json:"channel"`
	Blocks      []markdown.Block `json:"blocks"`
	UnfurlLinks bool             `json:"unfurl_links"`
	UnfurlMedia bool             `json:"unfurl_media"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage delivers one block message to a channel.
func (s *Slack) PostMessage(ctx context.Context, channel string, blocks []markdown.Block, opts PostOptions) error {
	payload := postMessageRequest{
		Channel:     channel,
		Blocks:      blocks,
		UnfurlLinks: !opts.SuppressLinkPreview,
		UnfurlMedia: !opts.SuppressLinkPreview,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("post message: %s", apiResp.Error)
	}

	s.logger.Debug("posted message", "channel", channel, "blocks", len(blocks))
	return nil
}
