// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"text/template"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// personTmpl is shared by every prompt that describes a person.
const personTmpl = `{{define "person"}}{{if .}}{{with .FullName}}Name: {{.}}
{{end}}{{with .BirthDate}}Birth date: {{.}}
{{end}}{{with .KnownBirthTime}}Birth time: {{.}}
{{end}}{{with .BirthPlace}}Birth place: {{.}}
{{end}}{{end}}{{end}}`

func mustPrompt(name, body string) *template.Template {
	return template.Must(template.Must(template.New(name).Parse(personTmpl)).Parse(body))
}

// PalmistryFields is the palmistry reply contract.
var PalmistryFields = []string{
	"summary", "lifeLine", "headLine", "heartLine", "fateLine",
	"thumb", "indexFinger", "middleFinger", "ringFinger", "pinkyFinger",
	"mounts", "marriage", "children", "travelLines", "stressLines",
}

// AstrologyFields is the astrology reply contract.
var AstrologyFields = []string{
	"summary", "planetaryPositions", "ascendant", "houses",
	"family", "loveHouse", "health", "career",
}

// NumerologyFields is the numerology-narrative reply contract.
var NumerologyFields = []string{
	"summary", "lifePath", "expression", "personality", "soulUrge", "maturity",
}

// compatAspects are the per-person aspects compared in compat mode. Each
// yields a p1<Aspect> and p2<Aspect> field.
var compatAspects = []string{
	"Sun", "Moon", "Venus", "Mars", "Ascendant",
	"LifePath", "Expression", "SoulUrge", "HeartLine", "Temperament",
}

// CompatFields is the compatibility reply contract: score, summary, the
// twenty paired per-person fields, then the joint verdict.
var CompatFields = func() []string {
	fields := []string{"score", "summary"}
	for _, a := range compatAspects {
		fields = append(fields, "p1"+a, "p2"+a)
	}
	return append(fields, "coreCompatibility", "strengths", "challenges", "overall")
}()

// PalmistryInput feeds the palmistry prompt.
type PalmistryInput struct {
	Question string
	Person   *types.PersonalDetails
	HasImage bool
}

// AstrologyInput feeds the astrology prompt.
type AstrologyInput struct {
	Question string
	Person   *types.PersonalDetails
}

// NumerologyInput feeds the numerology-narrative prompt.
type NumerologyInput struct {
	Question string
	Person   *types.PersonalDetails
	Profile  *types.NumerologyProfile
}

// SummaryInput feeds the summary prompt.
type SummaryInput struct {
	Question string
	Sections []SummarySection
}

// SummarySection is one engine summary offered to the summary prompt.
type SummarySection struct {
	Name string
	Text string
}

// CompatInput feeds the compatibility prompt.
type CompatInput struct {
	Question          string
	First, Second     *types.PersonalDetails
	FirstProfile      *types.NumerologyProfile
	SecondProfile     *types.NumerologyProfile
	PalmistrySummary  string
	AstrologySummary  string
	NumerologySummary string
}

var palmistrySpec = Spec{
	Name:   types.EnginePalmistry,
	Fields: PalmistryFields,
	Prompt: mustPrompt("palmistry", `You are an experienced palm reader writing a personal reading.
{{if .HasImage}}Read the palm in the attached photo.{{else}}No photo was supplied; give a general reading informed by the person's details and question.{{end}}
{{template "person" .Person}}Question: {{.Question}}

Describe each major line, each finger, the mounts, and the marriage, children, travel and stress lines.
Keep every field to two or three warm, specific sentences that relate back to the question.`),
}

var astrologySpec = Spec{
	Name:   types.EngineAstrology,
	Fields: AstrologyFields,
	Prompt: mustPrompt("astrology", `You are a professional astrologer preparing a natal reading.
{{template "person" .Person}}Question: {{.Question}}

Cover planetary positions, the ascendant, the houses, family, the love house, health and career.
If the birth time is missing, say the ascendant and houses are approximate.`),
}

var numerologySpec = Spec{
	Name:   types.EngineNumerology,
	Fields: NumerologyFields,
	Prompt: mustPrompt("numerology", `You are a numerologist writing a personal reading.
{{template "person" .Person}}{{with .Profile}}Computed life path: {{.LifePath}}
{{if .PersonalYear}}Computed personal year: {{.PersonalYear}}
{{end}}{{end}}Question: {{.Question}}

Interpret the life path, expression, personality, soul urge and maturity numbers.
Use the computed numbers as given; do not recalculate them.`),
}

var answerSpec = Spec{
	Name:   types.EngineAnswer,
	Fields: []string{"answer"},
	Prompt: mustPrompt("answer", `Answer the following question directly and concisely in at most four sentences.

Question: {{.}}`),
}

var summarySpec = Spec{
	Name:   types.EngineSummary,
	Fields: []string{"summary"},
	Prompt: mustPrompt("summary", `Write a short, encouraging summary (three to five sentences) of the reading below for the person who asked.

Question: {{.Question}}
{{range .Sections}}
{{.Name}}: {{.Text}}
{{end}}`),
}

var compatSpec = Spec{
	Name:     types.EngineCompat,
	Fields:   CompatFields,
	Examples: map[string]string{"score": "72"},
	Prompt: mustPrompt("compat", `You are an astrologer and numerologist assessing the compatibility of two people.

Person 1:
{{template "person" .First}}{{with .FirstProfile}}Life path: {{.LifePath}}
{{end}}
Person 2:
{{template "person" .Second}}{{with .SecondProfile}}Life path: {{.LifePath}}
{{end}}
Question: {{.Question}}
{{with .PalmistrySummary}}Palm reading of person 1: {{.}}
{{end}}{{with .AstrologySummary}}Astrology of person 1: {{.}}
{{end}}{{with .NumerologySummary}}Numerology of person 1: {{.}}
{{end}}
Give an integer score from 0 to 100. Fields starting with p1 describe person 1 and p2 person 2.`),
}

var technicalSpec = Spec{
	Name:   types.EngineTechnical,
	Fields: []string{"shortAnswer", "keyPoints", "explanation", "recommendations"},
	Examples: map[string]string{
		"keyPoints":       `["string"]`,
		"recommendations": `["string"]`,
	},
	Prompt: mustPrompt("technical", `You are a senior engineer answering a technical question.

Question: {{.}}

Give a one or two sentence short answer, three to six key points, a clear explanation and practical recommendations.`),
}
