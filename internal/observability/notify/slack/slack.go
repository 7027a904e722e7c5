// Package slack posts integrity alerts to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/printbroker-api/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// JobURLPrefix turns job ids into links when set, e.g. https://broker.example.com/jobs/.
	JobURLPrefix string
}

// Client delivers integrity alerts to a Slack webhook.
type Client struct {
	webhookURL   string
	channel      string
	username     string
	jobURLPrefix string
	poster       *notify.Poster
}

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}
	return &Client{
		webhookURL:   webhookURL,
		channel:      strings.TrimSpace(cfg.Channel),
		username:     notify.Fallback(strings.TrimSpace(cfg.Username), "printbroker"),
		jobURLPrefix: strings.TrimSpace(cfg.JobURLPrefix),
		poster:       notify.NewPoster("slack webhook", cfg.RetryLimit, cfg.Timeout, cfg.Client),
	}, nil
}

// SendIntegrityAlert posts a formatted message to Slack.
func (c *Client) SendIntegrityAlert(ctx context.Context, alert notify.IntegrityAlert) error {
	return c.poster.PostJSON(ctx, c.webhookURL, c.formatMessage(alert))
}

func (c *Client) formatMessage(alert notify.IntegrityAlert) map[string]any {
	ts := alert.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	var text strings.Builder
	text.WriteString("*Data integrity alert*")
	if alert.Kind != "" {
		fmt.Fprintf(&text, " (%s)", escape(alert.Kind))
	}
	text.WriteByte('\n')

	writeField(&text, "Severity", notify.Fallback(alert.Severity, notify.SeverityCritical))
	writeField(&text, "Job", c.jobValue(alert.JobID, alert.JobNo))
	writeField(&text, "Message", escape(alert.Message))
	writeDetails(&text, alert.Details)
	fmt.Fprintf(&text, "• Time: %s", ts.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func (c *Client) jobValue(jobID, jobNo string) string {
	id := escape(strings.TrimSpace(jobID))
	no := escape(strings.TrimSpace(jobNo))
	label := id
	if no != "" && id != "" {
		label = fmt.Sprintf("%s (%s)", no, id)
	} else if no != "" {
		label = no
	}
	if link := c.jobLink(strings.TrimSpace(jobID)); link != "" {
		return fmt.Sprintf("<%s|%s>", link, label)
	}
	return label
}

func (c *Client) jobLink(jobID string) string {
	if jobID == "" || c.jobURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.jobURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), jobID)
	if err != nil {
		return ""
	}
	return link
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(v string) string { return slackEscaper.Replace(v) }

func writeField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(text, "• %s: %s\n", label, value)
}

func writeDetails(text *strings.Builder, details map[string]string) {
	if len(details) == 0 {
		return
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	text.WriteString("• Details:\n")
	for _, k := range keys {
		fmt.Fprintf(text, "    – %s: %s\n", escape(k), escape(details[k]))
	}
}
