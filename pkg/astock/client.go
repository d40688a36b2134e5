package astock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the astock-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetConfig retrieves the current backtest configuration.
func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var resp ConfigResponse
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, serverError(resp.Error)
	}
	if resp.Config == nil {
		return nil, errors.New("server returned no config")
	}
	return resp.Config, nil
}

// SaveConfig submits cfg as a full replacement of the server-side
// configuration.
func (c *Client) SaveConfig(ctx context.Context, cfg *Config) error {
	var resp SaveResponse
	if err := c.do(ctx, http.MethodPost, "/api/config", cfg, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return serverError(resp.Error)
	}
	return nil
}

// RunBacktest triggers a backtest with the server's stored configuration
// and returns the per-stock results plus combined statistics.
func (c *Client) RunBacktest(ctx context.Context) ([]ResultGroup, *Stats, error) {
	return c.results(ctx, http.MethodPost, "/api/backtest")
}

// GetTrades returns the results of the most recent backtest, as persisted
// by the server.
func (c *Client) GetTrades(ctx context.Context) ([]ResultGroup, *Stats, error) {
	return c.results(ctx, http.MethodGet, "/api/trades")
}

func (c *Client) results(ctx context.Context, method, path string) ([]ResultGroup, *Stats, error) {
	var resp ResultsResponse
	if err := c.do(ctx, method, path, nil, &resp); err != nil {
		return nil, nil, err
	}
	if !resp.Success {
		return nil, nil, serverError(resp.Error)
	}
	return resp.Results, resp.CombinedStatistics, nil
}

// do issues a JSON request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func serverError(msg string) error {
	if msg == "" {
		msg = "unknown server error"
	}
	return errors.New(msg)
}
