package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config holds PayOS API configuration
type Config struct {
	BaseURL     string
	ClientID    string
	APIKey      string
	ChecksumKey string
	Timeout     time.Duration
}

// Client talks to the PayOS merchant API
type Client struct {
	httpClient *http.Client
	config     Config
}

// CreateLinkRequest describes a checkout link to create
type CreateLinkRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"returnUrl"`
	CancelURL   string `json:"cancelUrl"`
	Signature   string `json:"signature"`
}

// CreateLinkResponse is the subset of the PayOS response this core uses
type CreateLinkResponse struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
}

type createLinkEnvelope struct {
	Code string             `json:"code"`
	Desc string             `json:"desc"`
	Data CreateLinkResponse `json:"data"`
}

// NewClient creates a new PayOS API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// CreateLink requests a hosted checkout link for an order.
// The request is signed with the checksum key before it leaves the process.
func (c *Client) CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if req.OrderCode <= 0 {
		return nil, fmt.Errorf("validation error: orderCode must be > 0")
	}
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("payos client is not initialized")
	}
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return nil, fmt.Errorf("payos config error: base_url is empty")
	}
	if strings.TrimSpace(c.config.ClientID) == "" || strings.TrimSpace(c.config.APIKey) == "" {
		return nil, fmt.Errorf("payos config error: client credentials are empty")
	}

	req.Signature = SignPairs(map[string]string{
		"amount":      strconv.FormatInt(req.Amount, 10),
		"cancelUrl":   req.CancelURL,
		"description": req.Description,
		"orderCode":   strconv.FormatInt(req.OrderCode, 10),
		"returnUrl":   req.ReturnURL,
	}, c.config.ChecksumKey)

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payos request: %w", err)
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	url := base + "/v2/payment-requests"

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("payos api call failed: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.config.ClientID)
	httpReq.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payos api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payos api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payos api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	var out createLinkEnvelope
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse payos response: %w", err)
	}
	if out.Code != "00" {
		return nil, fmt.Errorf("payos rejected request: %s %s", out.Code, out.Desc)
	}
	if out.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("payos response missing checkout url")
	}

	return &out.Data, nil
}
