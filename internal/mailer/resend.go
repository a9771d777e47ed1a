package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

type ResendConfig struct {
	APIKey  string
	From    string
	BaseURL string
}

// APIError is a non-2xx answer from Resend.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("resend: %d %s: %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("resend: %d: %s", e.StatusCode, e.Message)
}

type ResendSender struct {
	cfg    ResendConfig
	client *http.Client
}

func NewResendSender(cfg ResendConfig) *ResendSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = resendAPIURL
	}
	return &ResendSender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

type resendAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
}

type resendEmail struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	Text        string             `json:"text"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

func (r *ResendSender) Send(ctx context.Context, msg Message) error {
	to, err := msg.recipient()
	if err != nil {
		return err
	}

	email := resendEmail{From: r.cfg.From, To: []string{to}, Subject: msg.Subject, Text: msg.Text}
	for _, a := range msg.Attachments {
		email.Attachments = append(email.Attachments, resendAttachment{
			Filename:    a.Filename,
			Content:     base64.StdEncoding.EncodeToString(a.Data),
			ContentType: a.ContentType,
		})
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("resend: encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = string(bytes.TrimSpace(raw))
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
