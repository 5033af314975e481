// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// limited paces calls to the wrapped backend with a shared token bucket.
type limited struct {
	next    Generator
	limiter *rate.Limiter
}

// Limit wraps g so every call first waits on limiter. Image support of the
// wrapped backend is preserved.
func Limit(g Generator, limiter *rate.Limiter) Generator {
	l := &limited{next: g, limiter: limiter}
	if _, ok := g.(ImageGenerator); ok {
		return &limitedImage{limited: l}
	}
	return l
}

func (l *limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return l.next.Generate(ctx, prompt)
}

type limitedImage struct {
	*limited
}

func (l *limitedImage) GenerateWithImage(ctx context.Context, prompt string, img types.Image) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return l.next.(ImageGenerator).GenerateWithImage(ctx, prompt, img)
}
