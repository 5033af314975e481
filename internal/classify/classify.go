// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a question is personal or technical.
package classify

import (
	"context"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/engine"
	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Fallback confidences are fixed, not computed.
const (
	FallbackPersonalConfidence  = 0.55
	FallbackTechnicalConfidence = 0.4
)

// personalKeywords mark first-person or personal-topic questions. Matching is
// on the lowercased question.
var personalKeywords = []string{
	"my", "i ", "love", "career", "born", "should i", "future", "health",
	"will i", "am i", "me ",
}

var classifySpec = engine.Spec{
	Name:   "classify",
	Fields: []string{"type", "confidence"},
	Examples: map[string]string{
		"type":       `"personal|technical"`,
		"confidence": "0.9",
	},
	Prompt: template.Must(template.New("classify").Parse(`Classify the question below.
"personal" means it is about the asker's own life: love, career, health, family, future or destiny.
"technical" means it asks about a subject, tool, technique or fact.

Question: {{.}}`)),
}

type reply struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Classifier asks the generator first and falls back to a keyword rule.
type Classifier struct {
	runner *engine.Runner
	log    *zap.Logger
}

// New returns a Classifier. A nil gen always uses the keyword rule.
func New(gen generate.Generator, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{runner: engine.NewRunner(gen, log), log: log}
}

// Classify never fails; any dependency problem yields the fallback result.
func (c *Classifier) Classify(ctx context.Context, question string) types.Classification {
	var r reply
	if err := c.runner.RawJSON(ctx, classifySpec, question, &r); err != nil {
		c.log.Debug("classifier falling back", zap.Error(err))
		return Fallback(question)
	}

	t := types.QuestionType(strings.ToLower(strings.TrimSpace(r.Type)))
	if t != types.QuestionPersonal && t != types.QuestionTechnical {
		c.log.Debug("classifier falling back", zap.String("type", r.Type))
		return Fallback(question)
	}
	return types.Classification{Type: t, Confidence: clamp(r.Confidence), Source: types.SourceExternal}
}

// Fallback applies the deterministic keyword rule.
func Fallback(question string) types.Classification {
	q := strings.ToLower(question)
	for _, kw := range personalKeywords {
		if strings.Contains(q, kw) {
			return types.Classification{Type: types.QuestionPersonal, Confidence: FallbackPersonalConfidence, Source: types.SourceFallback}
		}
	}
	return types.Classification{Type: types.QuestionTechnical, Confidence: FallbackTechnicalConfidence, Source: types.SourceFallback}
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
