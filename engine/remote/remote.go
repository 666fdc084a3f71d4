// Package remote implements engine.MoveService over HTTP+JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"termchess/engine"
	"termchess/types"
)

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %s", e.Status)
}

// Client talks to a move service over HTTP.
type Client struct {
	cfg     engine.Config
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request timeout. Zero means none. It applies to a
// copy of the http.Client, so the one given to WithHTTPClient is not changed.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the service described by cfg.
func NewClient(cfg engine.Config, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// ValidateMove posts the position and move to the validation endpoint.
func (c *Client) ValidateMove(ctx context.Context, position string, m types.Move) (engine.Validation, error) {
	body, err := c.post(ctx, c.cfg.ValidatePath, engine.ValidateRequest{
		FEN:  position,
		Move: engine.ToWire(m),
	})
	if err != nil {
		return engine.Validation{}, err
	}
	v, err := engine.DecodeValidateResponse(body)
	if err != nil {
		c.log.Warn("bad validation response", zap.ByteString("body", body), zap.Error(err))
		return engine.Validation{}, err
	}
	return v, nil
}

// RequestMove posts the position to the move endpoint.
func (c *Client) RequestMove(ctx context.Context, position string) (engine.Reply, error) {
	body, err := c.post(ctx, c.cfg.MovePath, engine.MoveRequest{FEN: position})
	if err != nil {
		return engine.Reply{}, err
	}
	r, err := engine.DecodeMoveResponse(body)
	if err != nil {
		c.log.Warn("bad move response", zap.ByteString("body", body), zap.Error(err))
		return engine.Reply{}, err
	}
	return r, nil
}

// post sends payload as JSON and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	c.log.Debug("request", zap.String("url", url), zap.ByteString("body", data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.ByteString("body", body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}
