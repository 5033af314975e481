// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Engines exposes one method per generation engine.
type Engines struct {
	runner *Runner
}

// New returns Engines backed by gen.
func New(gen generate.Generator, log *zap.Logger) *Engines {
	return &Engines{runner: NewRunner(gen, log)}
}

// Runner returns the shared runner so other packages can run their own Specs.
func (e *Engines) Runner() *Runner {
	return e.runner
}

// Palmistry reads the palm photo when one was uploaded.
func (e *Engines) Palmistry(ctx context.Context, q types.Question) Outcome {
	in := PalmistryInput{
		Question: q.Text,
		Person:   q.Details,
		HasImage: q.Image != nil && len(q.Image.Data) > 0,
	}
	return e.runner.Run(ctx, palmistrySpec, in, q.Image)
}

// Astrology produces the natal reading.
func (e *Engines) Astrology(ctx context.Context, q types.Question) Outcome {
	return e.runner.Run(ctx, astrologySpec, AstrologyInput{Question: q.Text, Person: q.Details}, nil)
}

// Numerology produces the narrative around a computed profile. profile may be nil.
func (e *Engines) Numerology(ctx context.Context, q types.Question, profile *types.NumerologyProfile) Outcome {
	in := NumerologyInput{Question: q.Text, Person: q.Details, Profile: profile}
	return e.runner.Run(ctx, numerologySpec, in, nil)
}

// Answer gives a direct answer to question.
func (e *Engines) Answer(ctx context.Context, question string) Outcome {
	return e.runner.Run(ctx, answerSpec, question, nil)
}

// Summary condenses the available engine summaries. With no available
// section it fails without calling the generator.
func (e *Engines) Summary(ctx context.Context, question string, outcomes ...Outcome) Outcome {
	in := SummaryInput{Question: question}
	for _, o := range outcomes {
		if s := o.Result.Summary(); o.Available() && s != "" {
			in.Sections = append(in.Sections, SummarySection{Name: string(o.Engine), Text: s})
		}
	}
	if len(in.Sections) == 0 {
		return Outcome{Engine: types.EngineSummary, Status: StatusFailed, Reason: "no section to summarise"}
	}
	return e.runner.Run(ctx, summarySpec, in, nil)
}

// CompatRequest carries everything the compatibility engine reads.
type CompatRequest struct {
	Question      types.Question
	FirstProfile  *types.NumerologyProfile
	SecondProfile *types.NumerologyProfile
	Palmistry     Outcome
	Astrology     Outcome
	Numerology    Outcome
}

// Compatibility compares the requester with the partner. The score is
// returned as generated; callers clamp it.
func (e *Engines) Compatibility(ctx context.Context, req CompatRequest) Outcome {
	in := CompatInput{
		Question:          req.Question.Text,
		First:             req.Question.Details,
		Second:            req.Question.Partner,
		FirstProfile:      req.FirstProfile,
		SecondProfile:     req.SecondProfile,
		PalmistrySummary:  req.Palmistry.Result.Summary(),
		AstrologySummary:  req.Astrology.Result.Summary(),
		NumerologySummary: req.Numerology.Result.Summary(),
	}
	return e.runner.Run(ctx, compatSpec, in, nil)
}

// TechnicalOutcome is the technical-analysis engine result.
type TechnicalOutcome struct {
	Status Status
	Result types.TechnicalResult
	Reason string
}

// technicalReply mirrors the technical JSON contract. Lists may come back
// as a single string, so they are decoded loosely.
type technicalReply struct {
	ShortAnswer     any `json:"shortAnswer"`
	KeyPoints       any `json:"keyPoints"`
	Explanation     any `json:"explanation"`
	Recommendations any `json:"recommendations"`
}

// Technical answers a technical question with key points.
func (e *Engines) Technical(ctx context.Context, question string) TechnicalOutcome {
	var reply technicalReply
	if err := e.runner.RawJSON(ctx, technicalSpec, question, &reply); err != nil {
		e.runner.log.Warn("engine call failed", zap.String("engine", string(types.EngineTechnical)), zap.Error(err))
		return TechnicalOutcome{Status: StatusFailed, Reason: err.Error()}
	}

	res := types.TechnicalResult{
		ShortAnswer:     Stringify(reply.ShortAnswer),
		KeyPoints:       toList(reply.KeyPoints),
		Explanation:     Stringify(reply.Explanation),
		Recommendations: toList(reply.Recommendations),
	}

	switch {
	case res.ShortAnswer == "" && len(res.KeyPoints) == 0 && res.Explanation == "":
		return TechnicalOutcome{Status: StatusFailed, Reason: "reply has none of the expected fields"}
	case res.ShortAnswer == "" || len(res.KeyPoints) == 0 || res.Explanation == "" || len(res.Recommendations) == 0:
		return TechnicalOutcome{Status: StatusDegraded, Result: res, Reason: "some fields missing"}
	default:
		return TechnicalOutcome{Status: StatusOK, Result: res}
	}
}

// toList accepts a JSON array or a newline/semicolon separated string.
func toList(v any) []string {
	var raw []string
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			raw = append(raw, Stringify(item))
		}
	case string:
		raw = strings.FieldsFunc(x, func(r rune) bool { return r == '\n' || r == ';' })
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*•"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
