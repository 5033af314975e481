// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the content-generation engines. Each engine renders a
// prompt, calls the text-generation dependency, parses the JSON reply and
// validates it against the engine's field set. Engines never return errors:
// a failed call is reported through Outcome so one broken engine cannot
// abort the report.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Status classifies an engine call.
type Status int

const (
	// StatusOK means every declared field came back non-empty.
	StatusOK Status = iota
	// StatusDegraded means the reply parsed but some fields are blank.
	StatusDegraded
	// StatusFailed means no usable result: call error, bad JSON, or no known field.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// ErrUnavailable is the failure reason when no generator is configured.
var ErrUnavailable = errors.New("generation dependency unavailable")

// Outcome is the result of one engine call.
type Outcome struct {
	Engine types.EngineName
	Status Status
	Result types.EngineResult
	Reason string
}

// Available reports whether the outcome carries any content.
func (o Outcome) Available() bool {
	return o.Status != StatusFailed && !o.Result.IsEmpty()
}

// ResultOrNil returns a pointer to the result when available.
func (o Outcome) ResultOrNil() *types.EngineResult {
	if !o.Available() {
		return nil
	}
	r := o.Result
	return &r
}

// Spec declares one engine's prompt and response contract.
type Spec struct {
	Name types.EngineName

	// Prompt is executed with the engine's input value.
	Prompt *template.Template

	// Fields lists the response keys in display order.
	Fields []string

	// Examples overrides the example JSON value of a field in the declared
	// response shape (default "string").
	Examples map[string]string
}

// Shape renders the one-line JSON skeleton appended to every prompt.
func (s Spec) Shape() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		ex, ok := s.Examples[f]
		if !ok {
			ex = `"string"`
		}
		fmt.Fprintf(&b, "%q: %s", f, ex)
	}
	b.WriteByte('}')
	return b.String()
}

// Render executes the prompt template and appends the JSON-only instruction.
func (s Spec) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := s.Prompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", s.Name, err)
	}
	buf.WriteString("\n\nRespond with ONLY a JSON object of exactly this shape, no prose and no code fences:\n")
	buf.WriteString(s.Shape())
	buf.WriteByte('\n')
	return buf.String(), nil
}

// Runner executes Specs against a generator. It holds no request state and
// is shared by concurrent requests.
type Runner struct {
	gen generate.Generator
	log *zap.Logger
}

// NewRunner returns a Runner. A nil gen makes every call fail with
// ErrUnavailable; a nil log discards output.
func NewRunner(gen generate.Generator, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{gen: gen, log: log}
}

// Run renders spec with data, calls the generator (with img when the backend
// accepts images) and validates the reply.
func (r *Runner) Run(ctx context.Context, spec Spec, data any, img *types.Image) Outcome {
	start := time.Now()
	log := r.log.With(zap.String("engine", string(spec.Name)))

	raw, err := r.call(ctx, spec, data, img)
	if err != nil {
		log.Warn("engine call failed", zap.Error(err))
		return Outcome{Engine: spec.Name, Status: StatusFailed, Reason: err.Error()}
	}

	out := Validate(spec, raw)
	if out.Status == StatusFailed {
		log.Warn("engine reply rejected", zap.String("reason", out.Reason))
		return out
	}

	log.Debug("engine finished",
		zap.Stringer("status", out.Status),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return out
}

// RawJSON calls the generator with spec's prompt and decodes the reply into
// v. It is used by engines whose reply is not a flat field set.
func (r *Runner) RawJSON(ctx context.Context, spec Spec, data any, v any) error {
	raw, err := r.call(ctx, spec, data, nil)
	if err != nil {
		return err
	}
	return generate.ParseJSON(raw, v)
}

func (r *Runner) call(ctx context.Context, spec Spec, data any, img *types.Image) (string, error) {
	if r.gen == nil {
		return "", ErrUnavailable
	}

	prompt, err := spec.Render(data)
	if err != nil {
		return "", err
	}

	if img != nil && len(img.Data) > 0 {
		if ig, ok := r.gen.(generate.ImageGenerator); ok {
			return ig.GenerateWithImage(ctx, prompt, *img)
		}
	}
	return r.gen.Generate(ctx, prompt)
}

// Validate parses a raw generator reply against spec's field set.
func Validate(spec Spec, raw string) Outcome {
	var obj map[string]any
	if err := generate.ParseJSON(raw, &obj); err != nil {
		return Outcome{Engine: spec.Name, Status: StatusFailed, Reason: err.Error()}
	}

	result := types.EngineResult{Fields: make([]types.Field, 0, len(spec.Fields))}
	present := 0
	for _, key := range spec.Fields {
		v := Stringify(obj[key])
		if v != "" {
			present++
		}
		result.Fields = append(result.Fields, types.Field{Key: key, Value: v})
	}

	switch {
	case present == 0:
		return Outcome{Engine: spec.Name, Status: StatusFailed, Reason: "reply has none of the expected fields"}
	case present < len(spec.Fields):
		return Outcome{
			Engine: spec.Name,
			Status: StatusDegraded,
			Result: result,
			Reason: fmt.Sprintf("%d of %d fields missing", len(spec.Fields)-present, len(spec.Fields)),
		}
	default:
		return Outcome{Engine: spec.Name, Status: StatusOK, Result: result}
	}
}

// Stringify flattens a decoded JSON value into display text. Arrays are
// joined with "; " and objects become "key: value" pairs in key order.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := Stringify(x[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}
