package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type GatewayConfig struct {
	URL   string
	Token string
	From  string
}

// GatewaySender posts messages as JSON to an HTTP SMS gateway.
type GatewaySender struct {
	cfg    GatewayConfig
	client *http.Client
}

func NewGatewaySender(cfg GatewayConfig) *GatewaySender {
	return &GatewaySender{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type gatewayRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Text string `json:"text"`
}

type gatewayErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (g *GatewaySender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(gatewayRequest{From: g.cfg.From, To: msg.To, Text: msg.Text})
	if err != nil {
		return fmt.Errorf("sms gateway: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("sms gateway: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp gatewayErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil {
			if errResp.Message != "" {
				return fmt.Errorf("sms gateway: error %d: %s", resp.StatusCode, errResp.Message)
			}
			if errResp.Error != "" {
				return fmt.Errorf("sms gateway: error %d: %s", resp.StatusCode, errResp.Error)
			}
		}
		return fmt.Errorf("sms gateway: error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
