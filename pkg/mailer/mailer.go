// Package mailer implements a thin client for an HTTP JSON mail API.
// Delivery is best effort: callers treat failures as log-only events.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is a single outbound email.
type Message struct {
	ToEmail string `json:"to_email"`
	ToName  string `json:"to_name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Client delivers messages through the configured mail provider.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds mail provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

type httpClient struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// New builds a mail client against the configured provider endpoint.
func New(cfg Config, logger zerolog.Logger) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("mail api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("mail base url is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &httpClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "mailer").Logger(),
	}, nil
}

type sendPayload struct {
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	ToEmail   string `json:"to_email"`
	ToName    string `json:"to_name"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (c *httpClient) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return fmt.Errorf("recipient address is required")
	}

	payload, err := json.Marshal(sendPayload{
		FromEmail: c.cfg.FromEmail,
		FromName:  c.cfg.FromName,
		ToEmail:   msg.ToEmail,
		ToName:    msg.ToName,
		Subject:   msg.Subject,
		Body:      msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Debug().Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("mail accepted by provider")
	return nil
}
