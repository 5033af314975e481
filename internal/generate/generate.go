// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate wraps the external text-generation dependency. Backends
// are long-lived and stateless; one instance is built per process and shared
// by every request.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrNoJSON is returned by ParseJSON when the text holds no JSON object.
var ErrNoJSON = errors.New("response contains no JSON object")

// Generator turns a prompt into text that is expected to contain a JSON
// object, possibly wrapped in code fences.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator is implemented by backends that accept an image next to
// the prompt.
type ImageGenerator interface {
	Generator
	GenerateWithImage(ctx context.Context, prompt string, img types.Image) (string, error)
}

// New builds the backend selected by cfg.Backend. An empty backend selects
// the mock so local runs work without credentials.
func New(ctx context.Context, cfg types.AIConfig, log *zap.Logger) (Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		g   Generator
		err error
	)
	switch cfg.Backend {
	case types.AIBackendClaude:
		g, err = NewClaude(cfg)
	case types.AIBackendGemini:
		g, err = NewGemini(ctx, cfg)
	case types.AIBackendMock, "":
		g = NewMock()
	default:
		return nil, fmt.Errorf("unknown ai backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("generation backend ready",
		zap.String("backend", string(cfg.Backend)),
		zap.String("model", cfg.Model),
		zap.Float64("requests_per_second", cfg.RequestsPerSecond))

	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		g = Limit(g, rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst))
	}
	return g, nil
}

// StripFences removes a surrounding Markdown code fence such as ```json.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string ("json", "JSON", ...).
		s = s[nl+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseJSON strips code fences and decodes the JSON object in text into v.
// When the model wraps the object in prose, the outermost {...} span is used.
func ParseJSON(text string, v any) error {
	s := StripFences(text)
	if s == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("parsing response JSON: %w", err)
	}
	return nil
}
