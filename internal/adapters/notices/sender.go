// Package notices delivers partner payment notices and downstream invoices over HTTP.
package notices

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/target/printbroker-api/config"
	"github.com/target/printbroker-api/internal/core"
	"github.com/target/printbroker-api/internal/data/cryptoutil"
	"github.com/target/printbroker-api/internal/domain/model"
	"github.com/target/printbroker-api/internal/observability/notify"
)

// SignatureHeader carries the HMAC of the request body when a signing key is configured.
const SignatureHeader = "X-Signature"

// ErrNotConfigured is returned when the destination URL for a notice is empty.
var ErrNotConfigured = errors.New("notice destination not configured")

// Sender posts notices as signed JSON.
type Sender struct {
	partnerURL    string
	downstreamURL string
	poster        *notify.Poster
}

var _ core.NoticeSender = (*Sender)(nil)

// Options configures a Sender.
type Options struct {
	Config config.NoticeConfig
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// NewSender builds a Sender from notice configuration.
func NewSender(opts Options) (*Sender, error) {
	cfg := opts.Config
	poster := notify.NewPoster("notice", cfg.RetryLimit, cfg.Timeout, opts.Client)
	if cfg.SigningKey != "" {
		signer, err := cryptoutil.NewSigner([]byte(cfg.SigningKey))
		if err != nil {
			return nil, fmt.Errorf("notice signer: %w", err)
		}
		poster.Sign = func(body []byte) (string, string) {
			return SignatureHeader, signer.Sign(body)
		}
	}
	return &Sender{
		partnerURL:    cfg.PartnerURL,
		downstreamURL: cfg.DownstreamURL,
		poster:        poster,
	}, nil
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SendPartnerPaymentNotice tells the partner printer its payment was recorded.
func (s *Sender) SendPartnerPaymentNotice(ctx context.Context, notice model.PartnerNotice) error {
	return s.send(ctx, s.partnerURL, envelope{Type: "partner_payment", Data: notice})
}

// SendDownstreamInvoice sends the invoice request to the downstream printer.
func (s *Sender) SendDownstreamInvoice(ctx context.Context, notice model.InvoiceNotice) error {
	return s.send(ctx, s.downstreamURL, envelope{Type: "downstream_invoice", Data: notice})
}

func (s *Sender) send(ctx context.Context, url string, body envelope) error {
	if url == "" {
		return fmt.Errorf("%s: %w", body.Type, ErrNotConfigured)
	}
	return s.poster.PostJSON(ctx, url, body)
}
