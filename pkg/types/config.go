// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP collaborators.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is sent with every outbound request (e.g. "insight-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds transport-level retries on HTTP 429/503. Zero disables them.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AIBackendName selects the text-generation implementation.
type AIBackendName string

const (
	AIBackendClaude AIBackendName = "claude"
	AIBackendGemini AIBackendName = "gemini"
	AIBackendMock   AIBackendName = "mock"
)

// AIConfig holds settings for the text-generation dependency.
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend is claude, gemini or mock.
	Backend AIBackendName `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps each response.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// RequestsPerSecond paces outbound generation calls across the process.
	// Zero means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin (default "*").
	AllowedOrigin string `json:"allowed_origin" yaml:"allowed_origin"`

	// ReadTimeout bounds reading a request including an uploaded image.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds the whole pipeline run plus the response.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// CaptchaConfig holds human-verification settings.
type CaptchaConfig struct {
	HTTPConfig `yaml:",inline"`

	// VerifyURL is the siteverify endpoint (Cloudflare Turnstile by default).
	VerifyURL string `json:"verify_url" yaml:"verify_url"`

	// Secret is the server-side secret key.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`

	// Disabled skips verification entirely. Local development only.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// MailConfig holds delivery settings.
type MailConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend is "resend" or "log".
	Backend string `json:"backend" yaml:"backend"`

	// APIKey authenticates against the mail API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// From is the sender address.
	From string `json:"from" yaml:"from"`

	// BCC receives a copy of every report when set.
	BCC string `json:"bcc,omitempty" yaml:"bcc,omitempty"`
}

// PDFConfig holds headless-browser settings for PDF printing.
type PDFConfig struct {
	// Enabled turns PDF attachments on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// BrowserBin is an explicit Chrome/Chromium path. Empty means detect.
	BrowserBin string `json:"browser_bin,omitempty" yaml:"browser_bin,omitempty"`

	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL string `json:"control_url,omitempty" yaml:"control_url,omitempty"`

	// Timeout bounds one print job.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// UploadConfig holds image-upload limits.
type UploadConfig struct {
	// MaxBytes is the largest accepted image (default 10 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes"`

	// AllowedExtensions lists accepted lowercase extensions including the dot.
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`
}

// Config groups every setting of the service.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Captcha CaptchaConfig `json:"captcha" yaml:"captcha"`
	Mail    MailConfig    `json:"mail" yaml:"mail"`
	PDF     PDFConfig     `json:"pdf" yaml:"pdf"`
	Upload  UploadConfig  `json:"upload" yaml:"upload"`
}
