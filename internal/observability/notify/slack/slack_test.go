package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/target/printbroker-api/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#finance-alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.IntegrityAlert{
		Kind:    notify.KindMissingIdentity,
		JobID:   "0b7c",
		JobNo:   "J-1001",
		Message: "job has no base job id",
		Details: map[string]string{"pathway": "", "created_at": "2025-04-01"},
	})

	if msg["username"] != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg["username"])
	}
	if msg["channel"] != "#finance-alerts" {
		t.Fatalf("expected channel to be set, got %v", msg["channel"])
	}
	text, ok := msg["text"].(string)
	if !ok {
		t.Fatal("expected text field")
	}
	for _, want := range []string{"Data integrity alert", "missing_identity", "J-1001 (0b7c)", "no base job id", "created_at", notify.SeverityCritical} {
		if !strings.Contains(text, want) {
			t.Fatalf("message text missing %q: %s", want, text)
		}
	}
}

func TestFormatMessageJobLink(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:   "https://hooks.slack.com/services/test",
		JobURLPrefix: "https://broker.local/jobs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, _ := client.formatMessage(notify.IntegrityAlert{JobID: "abc", JobNo: "J-7"})["text"].(string)
	if !strings.Contains(text, "<https://broker.local/jobs/abc|J-7 (abc)>") {
		t.Fatalf("expected job link, got %s", text)
	}
}

func TestFormatMessageEscapes(t *testing.T) {
	client, _ := NewClient(Config{WebhookURL: "https://hooks.slack.com/services/test"})
	text, _ := client.formatMessage(notify.IntegrityAlert{Message: "a<b>&c"})["text"].(string)
	if !strings.Contains(text, "a&lt;b&gt;&amp;c") {
		t.Fatalf("expected escaped message, got %s", text)
	}
}

func TestSendIntegrityAlertPosts(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendIntegrityAlert(context.Background(), notify.IntegrityAlert{JobID: "j1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	body := <-got
	if body["username"] != "printbroker" {
		t.Fatalf("expected default username, got %v", body["username"])
	}
}
