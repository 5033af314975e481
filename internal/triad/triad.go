// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triad fuses the palmistry, astrology and numerology readings into
// one interpretation. Each domain is interpreted on its own, concurrently;
// a combining step then reads all three to write the combined reading, the
// timeline and the recommendations. Missing domains are skipped, never
// reported as errors.
package triad

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/insight-engine/internal/engine"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Input carries the question context and the domain readings. A nil reading
// means the engine was unavailable.
type Input struct {
	Question   string
	Intent     types.Classification
	Astrology  *types.EngineResult
	Numerology *types.EngineResult
	Palmistry  *types.EngineResult
	Profile    *types.NumerologyProfile
}

// domainInput feeds one per-domain interpretation prompt.
type domainInput struct {
	Question string
	Intent   types.QuestionType
	Domain   string
	Reading  *types.EngineResult
	Profile  *types.NumerologyProfile
}

// combineInput feeds the combining prompt.
type combineInput struct {
	Question string
	Intent   types.QuestionType
	Domains  []domainText
	Profile  *types.NumerologyProfile
}

type domainText struct {
	Name           string
	Summary        string
	Interpretation string
}

const readingTmpl = `{{define "reading"}}{{range .Fields}}{{if .Value}}- {{.Key}}: {{.Value}}
{{end}}{{end}}{{end}}`

func interpretSpec(domain types.EngineName) engine.Spec {
	return engine.Spec{
		Name:   types.EngineTriad + "." + domain,
		Fields: []string{"interpretation"},
		Prompt: template.Must(template.Must(template.New(string(domain)).Parse(readingTmpl)).Parse(
			`You interpret one part of a combined reading.
The person asked: {{.Question}}
The question is {{.Intent}}.

Here is their {{.Domain}} reading:
{{with .Reading}}{{template "reading" .}}{{end}}{{with .Profile}}- computed life path: {{.LifePath}}
{{if .PersonalYear}}- computed personal year: {{.PersonalYear}}
{{end}}{{end}}
In three or four sentences, explain what this {{.Domain}} reading says about the question.`)),
	}
}

var (
	astroSpec      = interpretSpec(types.EngineAstrology)
	numerologySpec = interpretSpec(types.EngineNumerology)
	palmSpec       = interpretSpec(types.EnginePalmistry)
)

var combineSpec = engine.Spec{
	Name:   types.EngineTriad,
	Fields: []string{"shortAnswer", "combined", "timeline", "recommendations"},
	Prompt: template.Must(template.New("combine").Parse(`You combine astrology, numerology and palmistry into one answer.
The person asked: {{.Question}}
The question is {{.Intent}}.
{{range .Domains}}
{{.Name}}:{{with .Summary}}
  reading: {{.}}{{end}}{{with .Interpretation}}
  interpretation: {{.}}{{end}}
{{else}}
No individual reading is available; answer from the question alone.
{{end}}{{with .Profile}}{{if .PersonalYear}}
The person is in personal year {{.PersonalYear}} and personal month {{.PersonalMonth}} ({{.PersonalMonthRange}}).
{{end}}{{end}}
Give a one or two sentence short answer, a combined reading that weaves the available parts together, a timeline for the coming months and concrete recommendations.
Only use the parts listed above.`)),
}

// Synthesizer runs the triad steps on a shared engine.Runner.
type Synthesizer struct {
	runner *engine.Runner
	log    *zap.Logger
}

// New returns a Synthesizer.
func New(runner *engine.Runner, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{runner: runner, log: log}
}

// Synthesize never fails. With no usable input and a failed combining step
// the result is empty.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) types.TriadResult {
	var res types.TriadResult

	// Each goroutine writes only its own field.
	var g errgroup.Group
	g.Go(func() error {
		res.AstroInterpretation = s.interpret(ctx, astroSpec, in, in.Astrology, nil)
		return nil
	})
	g.Go(func() error {
		res.NumerologyInterpretation = s.interpret(ctx, numerologySpec, in, in.Numerology, in.Profile)
		return nil
	})
	g.Go(func() error {
		res.PalmInterpretation = s.interpret(ctx, palmSpec, in, in.Palmistry, nil)
		return nil
	})
	_ = g.Wait()

	domains := []domainText{
		{Name: string(types.EngineAstrology), Summary: summaryOf(in.Astrology), Interpretation: res.AstroInterpretation},
		{Name: string(types.EngineNumerology), Summary: summaryOf(in.Numerology), Interpretation: res.NumerologyInterpretation},
		{Name: string(types.EnginePalmistry), Summary: summaryOf(in.Palmistry), Interpretation: res.PalmInterpretation},
	}
	var present []domainText
	for _, d := range domains {
		if d.Summary != "" || d.Interpretation != "" {
			present = append(present, d)
		}
	}

	out := s.runner.Run(ctx, combineSpec, combineInput{
		Question: in.Question,
		Intent:   in.Intent.Type,
		Domains:  present,
		Profile:  in.Profile,
	}, nil)

	if out.Available() {
		res.ShortAnswer = out.Result.Get("shortAnswer")
		res.Combined = out.Result.Get("combined")
		res.Timeline = out.Result.Get("timeline")
		res.Recommendations = out.Result.Get("recommendations")
	}
	if res.Combined == "" || res.Timeline == "" {
		s.log.Debug("triad combining step incomplete, composing locally", zap.String("reason", out.Reason))
		local := compose(present, in.Profile)
		if res.Combined == "" {
			res.Combined = local.Combined
		}
		if res.Timeline == "" {
			res.Timeline = local.Timeline
		}
	}
	return res
}

func (s *Synthesizer) interpret(ctx context.Context, spec engine.Spec, in Input, reading *types.EngineResult, profile *types.NumerologyProfile) string {
	if (reading == nil || reading.IsEmpty()) && profile == nil {
		return ""
	}
	out := s.runner.Run(ctx, spec, domainInput{
		Question: in.Question,
		Intent:   in.Intent.Type,
		Domain:   strings.TrimPrefix(string(spec.Name), string(types.EngineTriad)+"."),
		Reading:  reading,
		Profile:  profile,
	}, nil)
	return out.Result.Get("interpretation")
}

func summaryOf(r *types.EngineResult) string {
	if r == nil {
		return ""
	}
	return r.Summary()
}

// compose builds the combined reading and the timeline from whatever parts
// exist, without calling the generator.
func compose(domains []domainText, profile *types.NumerologyProfile) types.TriadResult {
	var parts []string
	for _, d := range domains {
		text := d.Interpretation
		if text == "" {
			text = d.Summary
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	var res types.TriadResult
	res.Combined = strings.Join(parts, " ")
	if profile != nil && profile.PersonalYear != 0 {
		res.Timeline = fmt.Sprintf("Personal year %d", profile.PersonalYear)
		if profile.PersonalYearMeaning != "" {
			res.Timeline += ": " + profile.PersonalYearMeaning
		} else {
			res.Timeline += "."
		}
		if profile.PersonalMonth != 0 {
			res.Timeline += fmt.Sprintf(" Personal month %d runs %s.", profile.PersonalMonth, profile.PersonalMonthRange)
		}
	}
	return res
}
