package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brojonat/solsend/service/metrics"
)

// Balance is the backend's view of the session owner's token balance.
type Balance struct {
	Balance   uint64 `json:"balance"`
	Formatted string `json:"formatted_balance"`
}

// TransferRecord is the payload recorded against the backend after a
// transfer reaches a terminal outcome.
type TransferRecord struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    uint64    `json:"amount"`
	Signature string    `json:"signature"`
	Mint      string    `json:"mint"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is the HTTP client for the backend persistence collaborator.
// Every request carries the per-session anti-forgery token.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewClient creates a new backend client. The sessionToken is sent on every
// request as the X-Session-Token header.
func NewClient(baseURL, sessionToken string, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   httpClient,
		metrics:      m,
		logger:       logger,
	}
}

// GetBalance retrieves the token balance for an owner address.
func (c *Client) GetBalance(ctx context.Context, owner string) (*Balance, error) {
	u := fmt.Sprintf("%s/api/v1/balance/%s", c.baseURL, url.PathEscape(owner))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do("get_balance", req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var balance Balance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("fetched balance", "owner", owner, "balance", balance.Balance)
	return &balance, nil
}

// RecordTransfer records a completed transfer with the backend.
func (c *Client) RecordTransfer(ctx context.Context, record TransferRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do("record_transfer", req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	c.logger.Debug("transfer recorded", "signature", record.Signature, "to", record.To)
	return nil
}

// DisconnectNotify tells the backend the session has ended. Best-effort:
// callers are expected to clear local state regardless of the outcome.
func (c *Client) DisconnectNotify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/session/disconnect", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do("disconnect_notify", req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseErrorResponse(resp)
	}

	c.logger.Debug("backend notified of disconnect")
	return nil
}

// do executes a request with the session token attached and records metrics.
func (c *Client) do(operation string, req *http.Request) (*http.Response, error) {
	if c.sessionToken != "" {
		req.Header.Set("X-Session-Token", c.sessionToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	} else if resp.StatusCode >= 400 {
		status = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	if c.metrics != nil {
		c.metrics.RecordBackendRequest(operation, status, duration)
	}

	return resp, err
}

// parseErrorResponse attempts to parse an error response from the backend.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
