// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Mock answers every prompt with well-formed JSON built from the response
// shape the prompt itself declares (its last line starting with "{").
// String values become sample text, arrays get three sample entries,
// numbers keep the example value and "a|b" alternatives resolve to the
// first option. It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	prompts []string
}

// NewMock returns a ready Mock.
func NewMock() *Mock {
	return &Mock{}
}

// Prompts returns a copy of every prompt received so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Generate implements Generator.
func (m *Mock) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	shape, err := declaredShape(prompt)
	if err != nil {
		return "", err
	}

	out := make(map[string]any, len(shape))
	for key, example := range shape {
		out[key] = sampleValue(key, example)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}

// GenerateWithImage implements ImageGenerator; the image is ignored.
func (m *Mock) GenerateWithImage(ctx context.Context, prompt string, _ types.Image) (string, error) {
	return m.Generate(ctx, prompt)
}

// declaredShape finds the JSON skeleton a prompt ends with.
func declaredShape(prompt string) (map[string]any, error) {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var shape map[string]any
		if err := json.Unmarshal([]byte(line), &shape); err != nil {
			return nil, fmt.Errorf("mock: malformed response shape: %w", err)
		}
		return shape, nil
	}
	return nil, fmt.Errorf("mock: prompt declares no response shape")
}

func sampleValue(key string, example any) any {
	switch v := example.(type) {
	case string:
		if opts := strings.Split(v, "|"); len(opts) > 1 {
			return opts[0]
		}
		return fmt.Sprintf("Sample %s.", key)
	case []any:
		return []string{
			fmt.Sprintf("Sample %s one.", key),
			fmt.Sprintf("Sample %s two.", key),
			fmt.Sprintf("Sample %s three.", key),
		}
	case map[string]any:
		nested := make(map[string]any, len(v))
		for k, ex := range v {
			nested[k] = sampleValue(k, ex)
		}
		return nested
	default:
		return v
	}
}
