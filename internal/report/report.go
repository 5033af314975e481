// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the final Report from already-produced engine
// outputs. It never calls out; the same Input always yields the same Report.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Key point bounds for technical reports.
const (
	MinKeyPoints = 3
	MaxKeyPoints = 6
)

// Input is everything the assembler merges. Results holds the available
// flat engine results keyed by engine; a missing key means unavailable.
type Input struct {
	Question       types.Question
	Classification types.Classification
	Profile        *types.NumerologyProfile
	Results        map[types.EngineName]types.EngineResult
	Technical      *types.TechnicalResult
	Triad          *types.TriadResult
}

// ModeFor picks the report shape. The classification gates everything: a
// technical question stays technical even when a partner was supplied.
func ModeFor(c types.Classification, q types.Question) types.Mode {
	switch {
	case c.Type == types.QuestionTechnical:
		return types.ModeTechnical
	case q.WantsCompatibility():
		return types.ModeCompat
	default:
		return types.ModePersonal
	}
}

// Assemble builds the Report.
func Assemble(in Input) types.Report {
	mode := ModeFor(in.Classification, in.Question)
	r := types.Report{
		Mode:           mode,
		Question:       in.Question.Text,
		Classification: in.Classification,
	}

	if mode == types.ModeTechnical {
		assembleTechnical(&r, in)
		return r
	}

	r.ShortAnswer = firstNonEmpty(triadShortAnswer(in.Triad), in.result(types.EngineAnswer).Get("answer"))
	r.Summary = firstNonEmpty(in.result(types.EngineSummary).Summary(), triadCombined(in.Triad))
	r.PersonalDetails = copyDetails(in.Question.Details)
	if in.Profile != nil {
		p := *in.Profile
		r.NumerologyProfile = &p
	}

	r.EngineResults = &types.EngineResults{
		Astrology:  section(in.Results, types.EngineAstrology),
		Numerology: MergeNumerology(in.resultPtr(types.EngineNumerology), in.Profile),
		Palmistry:  section(in.Results, types.EnginePalmistry),
		Triad:      triadSection(in.Triad),
	}

	if mode == types.ModeCompat {
		r.PartnerDetails = copyDetails(in.Question.Partner)
		compat := section(in.Results, types.EngineCompat)
		score := ClampScore(compat.Get("score"))
		compat.Set("score", strconv.Itoa(score))
		r.EngineResults.Compat = compat
		r.CompatScore = &score
	}
	return r
}

func assembleTechnical(r *types.Report, in Input) {
	var tech types.TechnicalResult
	if in.Technical != nil {
		tech = *in.Technical
	}
	r.ShortAnswer = firstNonEmpty(tech.ShortAnswer, in.result(types.EngineAnswer).Get("answer"))
	r.KeyPoints = boundKeyPoints(tech.KeyPoints)
	r.Explanation = firstNonEmpty(tech.Explanation)
	r.Recommendations = append([]string(nil), tech.Recommendations...)
	if len(r.Recommendations) == 0 {
		r.Recommendations = []string{types.Placeholder}
	}
}

// boundKeyPoints pads with placeholders up to MinKeyPoints and keeps the
// first MaxKeyPoints.
func boundKeyPoints(points []string) []string {
	out := make([]string, 0, MaxKeyPoints)
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" && len(out) < MaxKeyPoints {
			out = append(out, p)
		}
	}
	for len(out) < MinKeyPoints {
		out = append(out, types.Placeholder)
	}
	return out
}

// ClampScore parses a generated compatibility score and clamps it to
// [0,100]. Missing or non-numeric values become 0.
func ClampScore(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	default:
		return int(math.Round(f))
	}
}

// numerologyNarrativeOnly are narrative fields with no computed counterpart.
var numerologyNarrativeOnly = []string{"expression", "personality", "soulUrge", "maturity"}

// MergeNumerology combines the narrative engine output with the computed
// profile. Narrative text wins for display text; the computed profile
// supplies the numbers. Either side may be nil.
func MergeNumerology(narrative *types.EngineResult, profile *types.NumerologyProfile) *types.EngineResult {
	var n types.EngineResult
	if narrative != nil {
		n = *narrative
	}

	out := &types.EngineResult{}

	summary := n.Summary()
	if summary == "" && profile != nil && profile.LifePath != 0 {
		summary = fmt.Sprintf("Life path %d", profile.LifePath)
		if profile.LifePathMeaning != "" {
			summary += ": " + profile.LifePathMeaning
		}
	}
	out.Set("summary", firstNonEmpty(summary))

	lifePath := n.Get("lifePath")
	if profile != nil && profile.LifePath != 0 {
		lifePath = strconv.Itoa(profile.LifePath)
	}
	out.Set("lifePath", firstNonEmpty(lifePath))

	meaning := n.Get("lifePath")
	if meaning == lifePath {
		meaning = ""
	}
	if meaning == "" && profile != nil {
		meaning = profile.LifePathMeaning
	}
	if meaning != "" {
		out.Set("lifePathMeaning", meaning)
	}

	if !n.IsEmpty() {
		for _, k := range numerologyNarrativeOnly {
			out.Set(k, firstNonEmpty(n.Get(k)))
		}
	}

	if profile != nil && profile.PersonalYear != 0 {
		out.Set("personalYear", strconv.Itoa(profile.PersonalYear))
		if profile.PersonalYearMeaning != "" {
			out.Set("personalYearMeaning", profile.PersonalYearMeaning)
		}
		out.Set("personalMonth", strconv.Itoa(profile.PersonalMonth))
		out.Set("personalMonthRange", profile.PersonalMonthRange)
	}
	return out
}

// section returns a copy of the named result, or a placeholder summary when
// the engine was unavailable.
func section(results map[types.EngineName]types.EngineResult, name types.EngineName) *types.EngineResult {
	r, ok := results[name]
	if !ok || r.IsEmpty() {
		return &types.EngineResult{Fields: []types.Field{{Key: "summary", Value: types.Placeholder}}}
	}
	out := types.EngineResult{Fields: append([]types.Field(nil), r.Fields...)}
	if out.Summary() == "" {
		out.Set("summary", types.Placeholder)
	}
	return &out
}

func triadSection(t *types.TriadResult) *types.TriadResult {
	var out types.TriadResult
	if t != nil {
		out = *t
	}
	for _, f := range []*string{
		&out.ShortAnswer, &out.AstroInterpretation, &out.NumerologyInterpretation,
		&out.PalmInterpretation, &out.Combined, &out.Timeline, &out.Recommendations,
	} {
		*f = firstNonEmpty(*f)
	}
	return &out
}

func triadShortAnswer(t *types.TriadResult) string {
	if t == nil {
		return ""
	}
	return t.ShortAnswer
}

func triadCombined(t *types.TriadResult) string {
	if t == nil {
		return ""
	}
	return t.Combined
}

func (in Input) result(name types.EngineName) types.EngineResult {
	return in.Results[name]
}

func (in Input) resultPtr(name types.EngineName) *types.EngineResult {
	r, ok := in.Results[name]
	if !ok {
		return nil
	}
	return &r
}

func copyDetails(d *types.PersonalDetails) *types.PersonalDetails {
	if d == nil || d.IsEmpty() {
		return nil
	}
	c := *d
	return &c
}

// firstNonEmpty returns the first non-blank value, or the placeholder.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return types.Placeholder
}
