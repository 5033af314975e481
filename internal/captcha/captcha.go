// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package captcha verifies human-verification tokens before a question is
// allowed into the pipeline.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/insight-engine/internal/httputil"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrMissingToken is returned when no token was submitted.
var ErrMissingToken = errors.New("captcha token missing")

// turnstileURL is the Cloudflare Turnstile siteverify endpoint. Package-level
// var for test substitution.
var turnstileURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Result is the verification outcome.
type Result struct {
	OK         bool
	ErrorCodes []string
	Hostname   string
}

// Verifier checks a token submitted by a client.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Result, error)
}

// New returns the verifier cfg selects.
func New(cfg types.CaptchaConfig) Verifier {
	if cfg.Disabled {
		return Disabled{}
	}
	return NewTurnstile(cfg)
}

// Turnstile verifies tokens against a siteverify endpoint.
type Turnstile struct {
	Secret     string
	URL        string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
}

// NewTurnstile builds a Turnstile verifier from cfg.
func NewTurnstile(cfg types.CaptchaConfig) *Turnstile {
	return &Turnstile{
		Secret:     cfg.Secret,
		URL:        cfg.VerifyURL,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verify posts the token. An empty token fails without a network call.
func (t *Turnstile) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{}, ErrMissingToken
	}

	form := url.Values{"secret": {t.Secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	endpoint := t.URL
	if endpoint == "" {
		endpoint = turnstileURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("creating siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, t.Client, req, t.MaxRetries)
	if err != nil {
		return Result{}, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading siteverify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("siteverify returned %d: %s", resp.StatusCode, body)
	}

	var sv siteverifyResponse
	if err := json.Unmarshal(body, &sv); err != nil {
		return Result{}, fmt.Errorf("parsing siteverify response: %w", err)
	}
	return Result{OK: sv.Success, ErrorCodes: sv.ErrorCodes, Hostname: sv.Hostname}, nil
}

// Disabled accepts every token. Local development only.
type Disabled struct{}

// Verify implements Verifier.
func (Disabled) Verify(context.Context, string, string) (Result, error) {
	return Result{OK: true}, nil
}
