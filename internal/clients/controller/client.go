// Package controller provides the HTTP client for the remote traffic light controller.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	endpointHeartbeat = "heartbeat"
	endpointConfig    = "config"
	endpointRunning   = "running"
	endpointStart     = "start"
	endpointStop      = "stop"
)

// Client talks to the traffic light controller
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewClient creates a controller client. metrics may be nil.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: m,
		log:     log.With().Str("client", "controller").Logger(),
	}
}

// BaseURL returns the controller address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Heartbeat probes the controller. Any 2xx answer means it is reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, endpointHeartbeat, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return c.statusError(endpointHeartbeat, resp.StatusCode)
	}
	c.observe(endpointHeartbeat, "ok")
	return nil
}

// GetConfig fetches the stored timing configuration
func (c *Client) GetConfig(ctx context.Context) (*domain.TimingConfig, error) {
	resp, err := c.do(ctx, http.MethodGet, endpointConfig, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusNotFound {
		c.observe(endpointConfig, "not_found")
		return nil, ErrNoConfiguration
	}
	if !ok(resp.StatusCode) {
		return nil, c.statusError(endpointConfig, resp.StatusCode)
	}

	var cfg domain.TimingConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		c.observe(endpointConfig, "decode_error")
		return nil, fmt.Errorf("failed to parse controller configuration: %w", err)
	}

	c.observe(endpointConfig, "ok")
	return &cfg, nil
}

// SaveConfig stores a timing configuration on the controller
func (c *Client) SaveConfig(ctx context.Context, cfg domain.TimingConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, endpointConfig, body)
	if err != nil {
		return err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return c.statusError(endpointConfig, resp.StatusCode)
	}
	c.observe(endpointConfig, "ok")
	return nil
}

// Running reports whether the lights are cycling: 200 means running, 204 stopped.
func (c *Client) Running(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, endpointRunning, nil)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		c.observe(endpointRunning, "ok")
		return true, nil
	case http.StatusNoContent:
		c.observe(endpointRunning, "ok")
		return false, nil
	}
	return false, c.statusError(endpointRunning, resp.StatusCode)
}

// Start turns the lights on
func (c *Client) Start(ctx context.Context) (domain.Ack, error) {
	return c.toggle(ctx, endpointStart)
}

// Stop turns the lights off
func (c *Client) Stop(ctx context.Context) (domain.Ack, error) {
	return c.toggle(ctx, endpointStop)
}

func (c *Client) toggle(ctx context.Context, endpoint string) (domain.Ack, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Ack{}, err
	}
	defer drain(resp)

	if !ok(resp.StatusCode) {
		return domain.Ack{}, c.statusError(endpoint, resp.StatusCode)
	}
	c.observe(endpoint, "ok")
	return domain.Ack{Silent: resp.StatusCode == http.StatusNoContent}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	url := c.baseURL + "/" + endpoint

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("url", url).Msg("Calling controller")

	start := time.Now()
	resp, err := c.client.Do(req)
	if c.metrics != nil {
		c.metrics.ControllerRequestSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.observe(endpoint, "unreachable")
		c.log.Debug().Err(err).Str("url", url).Msg("Controller unreachable")
		return nil, &UnreachableError{Endpoint: endpoint, Err: err}
	}

	c.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Controller responded")

	return resp, nil
}

func (c *Client) statusError(endpoint string, status int) error {
	c.observe(endpoint, fmt.Sprintf("status_%d", status))
	return &StatusError{Endpoint: endpoint, StatusCode: status}
}

func (c *Client) observe(endpoint, outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.ControllerRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

// drain lets the transport reuse the connection
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

var _ domain.ControllerClient = (*Client)(nil)
