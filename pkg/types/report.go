// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Placeholder is rendered wherever a section value is unavailable.
const Placeholder = "—"

// QuestionType is the classifier's decision.
type QuestionType string

const (
	QuestionPersonal  QuestionType = "personal"
	QuestionTechnical QuestionType = "technical"
)

// ClassificationSource records which path produced a Classification.
type ClassificationSource string

const (
	SourceExternal ClassificationSource = "external"
	SourceFallback ClassificationSource = "fallback"
)

// Classification is produced once per Question and never re-derived.
type Classification struct {
	Type       QuestionType         `json:"type" yaml:"type"`
	Confidence float64              `json:"confidence" yaml:"confidence"`
	Source     ClassificationSource `json:"source" yaml:"source"`
}

// Mode selects the report shape.
type Mode string

const (
	ModePersonal  Mode = "personal"
	ModeTechnical Mode = "technical"
	ModeCompat    Mode = "compat"
)

// NumerologyProfile is derived from a birth date and a reference date.
type NumerologyProfile struct {
	LifePath            int    `json:"lifePath" yaml:"life_path"`
	PersonalYear        int    `json:"personalYear" yaml:"personal_year"`
	PersonalMonth       int    `json:"personalMonth" yaml:"personal_month"`
	PersonalMonthRange  string `json:"personalMonthRange" yaml:"personal_month_range"`
	LifePathMeaning     string `json:"lifePathMeaning" yaml:"life_path_meaning"`
	PersonalYearMeaning string `json:"personalYearMeaning" yaml:"personal_year_meaning"`
}

// EngineName identifies a generation engine.
type EngineName string

const (
	EnginePalmistry  EngineName = "palmistry"
	EngineAstrology  EngineName = "astrology"
	EngineNumerology EngineName = "numerology"
	EngineTechnical  EngineName = "technical"
	EngineAnswer     EngineName = "answer"
	EngineSummary    EngineName = "summary"
	EngineCompat     EngineName = "compat"
	EngineTriad      EngineName = "triad"
)

// Field is one key/value pair of an EngineResult.
type Field struct {
	Key   string
	Value string
}

// EngineResult is the ordered field set one engine produced. The order is
// the engine's declared field order, so rendering stays deterministic.
type EngineResult struct {
	Fields []Field
}

// Get returns the value for key, or "".
func (r EngineResult) Get(key string) string {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Summary returns the summary field.
func (r EngineResult) Summary() string {
	return r.Get("summary")
}

// IsEmpty reports whether every field is blank.
func (r EngineResult) IsEmpty() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f.Value) != "" {
			return false
		}
	}
	return true
}

// Set replaces the value of key, appending the field when absent.
func (r *EngineResult) Set(key, value string) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// MarshalJSON encodes the result as a JSON object in field order.
func (r EngineResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the result as a YAML mapping in field order.
func (r EngineResult) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.Fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Value},
		)
	}
	return node, nil
}

// TriadResult is the fused palmistry, astrology and numerology reading.
type TriadResult struct {
	ShortAnswer              string `json:"shortAnswer" yaml:"short_answer"`
	AstroInterpretation      string `json:"astroInterpretation" yaml:"astro_interpretation"`
	NumerologyInterpretation string `json:"numerologyInterpretation" yaml:"numerology_interpretation"`
	PalmInterpretation       string `json:"palmInterpretation" yaml:"palm_interpretation"`
	Combined                 string `json:"combined" yaml:"combined"`
	Timeline                 string `json:"timeline" yaml:"timeline"`
	Recommendations          string `json:"recommendations" yaml:"recommendations"`
}

// Fields lists the triad as an ordered EngineResult for table rendering.
func (t TriadResult) Fields() EngineResult {
	return EngineResult{Fields: []Field{
		{Key: "shortAnswer", Value: t.ShortAnswer},
		{Key: "astroInterpretation", Value: t.AstroInterpretation},
		{Key: "numerologyInterpretation", Value: t.NumerologyInterpretation},
		{Key: "palmInterpretation", Value: t.PalmInterpretation},
		{Key: "combined", Value: t.Combined},
		{Key: "timeline", Value: t.Timeline},
		{Key: "recommendations", Value: t.Recommendations},
	}}
}

// TechnicalResult is the technical-analysis engine output.
type TechnicalResult struct {
	ShortAnswer     string   `json:"shortAnswer" yaml:"short_answer"`
	KeyPoints       []string `json:"keyPoints" yaml:"key_points"`
	Explanation     string   `json:"explanation" yaml:"explanation"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

// EngineResults groups the per-engine sections of a personal or compat report.
type EngineResults struct {
	Palmistry  *EngineResult `json:"palmistry,omitempty" yaml:"palmistry,omitempty"`
	Astrology  *EngineResult `json:"astrology,omitempty" yaml:"astrology,omitempty"`
	Numerology *EngineResult `json:"numerology,omitempty" yaml:"numerology,omitempty"`
	Triad      *TriadResult  `json:"triad,omitempty" yaml:"triad,omitempty"`
	Compat     *EngineResult `json:"compat,omitempty" yaml:"compat,omitempty"`
}

// Report is the unified document handed from computation to presentation.
// Renderers read it and never change it.
type Report struct {
	Mode           Mode           `json:"mode" yaml:"mode"`
	Question       string         `json:"question" yaml:"question"`
	Classification Classification `json:"classification" yaml:"classification"`
	ShortAnswer    string         `json:"shortAnswer" yaml:"short_answer"`
	Summary        string         `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Technical mode only.
	KeyPoints       []string `json:"keyPoints,omitempty" yaml:"key_points,omitempty"`
	Explanation     string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`

	// Personal and compat modes only.
	PersonalDetails   *PersonalDetails   `json:"personalDetails,omitempty" yaml:"personal_details,omitempty"`
	PartnerDetails    *PersonalDetails   `json:"partnerDetails,omitempty" yaml:"partner_details,omitempty"`
	NumerologyProfile *NumerologyProfile `json:"numerologyProfile,omitempty" yaml:"numerology_profile,omitempty"`
	EngineResults     *EngineResults     `json:"engineResults,omitempty" yaml:"engine_results,omitempty"`

	// Compat mode only.
	CompatScore *int `json:"compatScore,omitempty" yaml:"compat_score,omitempty"`
}
