// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/pkg/types"
)

type fixedGenerator struct {
	reply string
	err   error
}

func (f fixedGenerator) Generate(context.Context, string) (string, error) {
	return f.reply, f.err
}

func TestFallback(t *testing.T) {
	tests := []struct {
		question string
		want     types.QuestionType
		conf     float64
	}{
		{question: "", want: types.QuestionTechnical, conf: 0.4},
		{question: "Should I leave my job for love?", want: types.QuestionPersonal, conf: 0.55},
		{question: "How does TCP congestion control work?", want: types.QuestionTechnical, conf: 0.4},
		{question: "WILL I find a new CAREER?", want: types.QuestionPersonal, conf: 0.55},
		{question: "Tell me about health insurance", want: types.QuestionPersonal, conf: 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got := Fallback(tt.question)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.conf, got.Confidence)
			assert.Equal(t, types.SourceFallback, got.Source)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		gen      generate.Generator
		question string
		want     types.Classification
	}{
		{
			name:     "no dependency",
			gen:      nil,
			question: "",
			want:     types.Classification{Type: types.QuestionTechnical, Confidence: 0.4, Source: types.SourceFallback},
		},
		{
			name:     "external answer",
			gen:      fixedGenerator{reply: `{"type":"technical","confidence":0.92}`},
			question: "Should I learn Rust?",
			want:     types.Classification{Type: types.QuestionTechnical, Confidence: 0.92, Source: types.SourceExternal},
		},
		{
			name:     "fenced and mixed case",
			gen:      fixedGenerator{reply: "```json\n{\"type\":\" Personal \",\"confidence\":0.7}\n```"},
			question: "What is a monad?",
			want:     types.Classification{Type: types.QuestionPersonal, Confidence: 0.7, Source: types.SourceExternal},
		},
		{
			name:     "confidence clamped",
			gen:      fixedGenerator{reply: `{"type":"personal","confidence":3}`},
			question: "q",
			want:     types.Classification{Type: types.QuestionPersonal, Confidence: 1, Source: types.SourceExternal},
		},
		{
			name:     "unknown type",
			gen:      fixedGenerator{reply: `{"type":"spiritual","confidence":0.9}`},
			question: "Should I leave my job for love?",
			want:     types.Classification{Type: types.QuestionPersonal, Confidence: 0.55, Source: types.SourceFallback},
		},
		{
			name:     "malformed reply",
			gen:      fixedGenerator{reply: "personal, probably"},
			question: "How does TCP congestion control work?",
			want:     types.Classification{Type: types.QuestionTechnical, Confidence: 0.4, Source: types.SourceFallback},
		},
		{
			name:     "dependency error",
			gen:      fixedGenerator{err: errors.New("deadline exceeded")},
			question: "Should I leave my job for love?",
			want:     types.Classification{Type: types.QuestionPersonal, Confidence: 0.55, Source: types.SourceFallback},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.gen, nil).Classify(context.Background(), tt.question)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_PromptDeclaresShape(t *testing.T) {
	m := generate.NewMock()
	got := New(m, nil).Classify(context.Background(), "What is a monad?")

	assert.Equal(t, types.SourceExternal, got.Source)
	assert.Equal(t, types.QuestionPersonal, got.Type)
	require.Len(t, m.Prompts(), 1)
	assert.Contains(t, m.Prompts()[0], `{"type": "personal|technical", "confidence": 0.9}`)
}
