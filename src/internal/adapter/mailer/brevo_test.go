package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBrevoMailerSendsVerification(t *testing.T) {
	var got brevoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("api-key") != "brevo-key" {
			t.Errorf("expected api-key header, got %q", r.Header.Get("api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer(BrevoConfig{
		APIKey:    "brevo-key",
		FromEmail: "noreply@bank.example",
		Endpoint:  srv.URL,
	})

	link := "http://api.example.com/api/v1/auth/verify?token=abc&x=1"
	if err := m.SendVerification(context.Background(), "ada@example.com", link); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if got.Sender.Email != "noreply@bank.example" || got.Sender.Name != "Bank One One" {
		t.Fatalf("unexpected sender %+v", got.Sender)
	}
	if len(got.To) != 1 || got.To[0].Email != "ada@example.com" {
		t.Fatalf("unexpected recipients %+v", got.To)
	}
	if got.Subject != "Verify your account" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	if !strings.Contains(got.HTMLContent, `href="http://api.example.com/api/v1/auth/verify?token=abc&amp;x=1"`) {
		t.Fatalf("expected escaped link in body, got %s", got.HTMLContent)
	}
}

func TestBrevoMailerReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	m := NewBrevoMailer(BrevoConfig{APIKey: "bad", Endpoint: srv.URL})
	err := m.SendPasswordReset(context.Background(), "ada@example.com", "http://app.example.com/reset-password?token=t")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Key not found") {
		t.Fatalf("expected status and detail in error, got %v", err)
	}
}

func TestLoggingMailerNeverFails(t *testing.T) {
	m := NewLoggingMailer()
	if err := m.SendVerification(context.Background(), "a@example.com", "link"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := m.SendPasswordReset(context.Background(), "a@example.com", "link"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
