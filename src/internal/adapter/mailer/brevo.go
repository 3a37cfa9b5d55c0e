// Package mailer delivers account emails.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

const (
	DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"
	defaultFromName      = "Bank One One"
)

type BrevoConfig struct {
	APIKey     string
	FromEmail  string
	FromName   string
	Endpoint   string
	HTTPClient *http.Client
}

// BrevoMailer sends transactional email through the Brevo HTTP API.
type BrevoMailer struct {
	cfg BrevoConfig
}

func NewBrevoMailer(cfg BrevoConfig) *BrevoMailer {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultBrevoEndpoint
	}
	if strings.TrimSpace(cfg.FromName) == "" {
		cfg.FromName = defaultFromName
	}
	return &BrevoMailer{cfg: cfg}
}

func (m *BrevoMailer) SendVerification(ctx context.Context, to string, link string) error {
	return m.send(ctx, to, "Verify your account", messageBody(to,
		"Welcome to Bank One One. Please verify your email to activate your account.",
		link, "Verify Account"))
}

func (m *BrevoMailer) SendPasswordReset(ctx context.Context, to string, link string) error {
	return m.send(ctx, to, "Reset your password", messageBody(to,
		"We received a request to reset your password. The link is valid for one hour.",
		link, "Reset Password"))
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (m *BrevoMailer) send(ctx context.Context, to string, subject string, body string) error {
	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoAddress{Email: m.cfg.FromEmail, Name: m.cfg.FromName},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: body,
	})
	if err != nil {
		return fmt.Errorf("marshal brevo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", m.cfg.APIKey)

	logger.Info("mailer sending email", logger.Fields{
		"to":      to,
		"subject": subject,
	})

	res, err := m.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return fmt.Errorf("read brevo error body: %w", err)
		}
		return fmt.Errorf("brevo request status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func messageBody(to string, intro string, link string, action string) string {
	return fmt.Sprintf(`<p>Hello <strong>%s</strong>,</p><p>%s</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(to), html.EscapeString(intro), html.EscapeString(link), html.EscapeString(action))
}

var _ services.Mailer = (*BrevoMailer)(nil)
