// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail delivers rendered reports.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/httputil"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// resendAPIURL is the Resend send endpoint. Package-level var for test substitution.
var resendAPIURL = "https://api.resend.com/emails"

// Backend names.
const (
	BackendResend = "resend"
	BackendLog    = "log"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("message has no recipient")

// Attachment is one file sent with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the sender cfg selects. An empty backend logs instead of sending.
func New(cfg types.MailConfig, log *zap.Logger) (Sender, error) {
	switch cfg.Backend {
	case BackendResend:
		return NewResend(cfg)
	case BackendLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

// Resend sends through the Resend HTTP API.
type Resend struct {
	APIKey     string
	From       string
	BCC        string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewResend builds a Resend sender from cfg.
func NewResend(cfg types.MailConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend backend requires an API key")
	}
	if cfg.From == "" {
		return nil, errors.New("resend backend requires a from address")
	}
	return &Resend{
		APIKey:     cfg.APIKey,
		From:       cfg.From,
		BCC:        cfg.BCC,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	BCC         []string           `json:"bcc,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Text        string             `json:"text,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// Send implements Sender.
func (s *Resend) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body := resendRequest{
		From:    s.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	if s.BCC != "" {
		body.BCC = []string{s.BCC}
	}
	for _, a := range msg.Attachments {
		body.Attachments = append(body.Attachments, resendAttachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling mail request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender returns a LogSender. A nil log discards output.
func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	s.log.Info("mail not sent (log backend)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.Strings("attachments", names))
	return nil
}
