package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoSender отправляет письма через транзакционный API Brevo
type BrevoSender struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
}

func NewBrevoSender(apiKey, senderEmail, senderName string) *BrevoSender {
	return &BrevoSender{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    DefaultBrevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint подменяет адрес API (для тестов и прокси)
func (s *BrevoSender) WithEndpoint(endpoint string) *BrevoSender {
	s.endpoint = endpoint
	return s
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

func (s *BrevoSender) Send(ctx context.Context, msg Message) error {
	if !IsDeliverable(msg.To) {
		return fmt.Errorf("brevo %q: %w", msg.To, ErrUndeliverable)
	}

	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Name: s.senderName, Email: s.senderEmail},
		To:          []brevoContact{{Email: msg.To}},
		Subject:     msg.Subject,
		TextContent: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
