// Transactional email client for a Resend-style HTTP API.
//
// Environment:
//   - MAILER_API_URL: email API endpoint (default https://api.resend.com/emails)
//   - MAILER_API_KEY: bearer token (re_...)
//   - MAILER_FROM: sender address
//
// When no API key is configured the client logs the message instead of
// sending it, which keeps local development working without an account.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fintrack/backend/internal/config"
)

type MailerClient struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

type mailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type mailResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewMailerClient(cfg config.MailerConfig) *MailerClient {
	return &MailerClient{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *MailerClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Send delivers one HTML email. Callers treat a returned error as a
// delivery problem only; it never invalidates the business operation
// that triggered the mail.
func (c *MailerClient) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !c.IsConfigured() {
		log.Printf("[Mailer] no API key configured, skipping delivery to=%s subject=%q", to, subject)
		return nil
	}

	payload, err := json.Marshal(mailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var mailResp mailResponse
		if err := json.Unmarshal(body, &mailResp); err == nil && mailResp.Message != "" {
			return fmt.Errorf("mail API error (%d): %s", resp.StatusCode, mailResp.Message)
		}
		return fmt.Errorf("mail API error (%d)", resp.StatusCode)
	}

	return nil
}
