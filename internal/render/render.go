// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a Report into the email body and the printable
// document. Renderers only format; every decision about content was made by
// the assembler. Free text is escaped, never interpreted as markup.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Title heads every rendered report.
const Title = "Your Insight Report"

// Disclaimer closes every rendered report.
const Disclaimer = "This report is generated for entertainment and personal reflection. " +
	"It is not professional, medical or financial advice."

var strict = bluemonday.StrictPolicy()

// clean escapes s for embedding in an HTML body. The strict policy runs over
// the escaped text as a final pass; escaped text carries no tags, so no
// characters of s are lost.
func clean(s string) template.HTML {
	return template.HTML(strict.Sanitize(template.HTMLEscapeString(s)))
}

// Row is one labelled value of a section table.
type Row struct {
	Label   string
	Value   string
	Meaning string
}

// Section is one titled part of a report: an optional lead-in paragraph and
// a key/value table.
type Section struct {
	Name    string
	Heading string
	Lead    string
	Rows    []Row
}

var headings = map[types.EngineName]string{
	types.EngineAstrology:  "Astrology",
	types.EngineNumerology: "Numerology",
	types.EnginePalmistry:  "Palmistry",
	types.EngineTriad:      "Combined Reading",
	types.EngineCompat:     "Compatibility",
}

// Sections lists the report's present sections in display order. Absent
// and empty results are skipped; the summary field becomes the lead-in and
// never a table row.
func Sections(r types.Report) []Section {
	var out []Section
	if s, ok := detailsSection("details", "Your Details", r.PersonalDetails); ok {
		out = append(out, s)
	}
	if s, ok := detailsSection("partner", "Partner Details", r.PartnerDetails); ok {
		out = append(out, s)
	}
	if r.EngineResults == nil {
		return out
	}

	er := r.EngineResults
	var triad *types.EngineResult
	if er.Triad != nil {
		f := er.Triad.Fields()
		triad = &f
	}
	for _, e := range []struct {
		name types.EngineName
		res  *types.EngineResult
	}{
		{types.EngineAstrology, er.Astrology},
		{types.EngineNumerology, er.Numerology},
		{types.EnginePalmistry, er.Palmistry},
		{types.EngineTriad, triad},
		{types.EngineCompat, er.Compat},
	} {
		if s, ok := resultSection(e.name, e.res); ok {
			out = append(out, s)
		}
	}
	return out
}

func resultSection(name types.EngineName, res *types.EngineResult) (Section, bool) {
	if res == nil || res.IsEmpty() {
		return Section{}, false
	}
	s := Section{Name: string(name), Heading: headings[name], Lead: res.Summary()}
	for _, f := range res.Fields {
		if f.Key == "summary" || strings.TrimSpace(f.Value) == "" {
			continue
		}
		row := Row{Label: Label(f.Key), Value: f.Value}
		if name == types.EngineNumerology {
			row.Meaning = fmt.Sprintf("Personalized interpretation for %s %s", row.Label, row.Value)
		}
		s.Rows = append(s.Rows, row)
	}
	return s, true
}

func detailsSection(name, heading string, d *types.PersonalDetails) (Section, bool) {
	if d == nil || d.IsEmpty() {
		return Section{}, false
	}
	birthTime := d.KnownBirthTime()
	if birthTime == "" && d.BirthTime != "" {
		birthTime = types.UnknownBirthTime
	}
	s := Section{Name: name, Heading: heading}
	for _, row := range []Row{
		{Label: "Name", Value: d.FullName},
		{Label: "Birth Date", Value: d.BirthDate},
		{Label: "Birth Time", Value: birthTime},
		{Label: "Birth Place", Value: d.BirthPlace()},
	} {
		if strings.TrimSpace(row.Value) != "" {
			s.Rows = append(s.Rows, row)
		}
	}
	return s, true
}

// Label turns a camelCase field key into a display label. The p1 and p2
// prefixes of compatibility fields name the person.
func Label(key string) string {
	prefix := ""
	switch {
	case strings.HasPrefix(key, "p1") && len(key) > 2:
		prefix, key = "Person 1 ", key[2:]
	case strings.HasPrefix(key, "p2") && len(key) > 2:
		prefix, key = "Person 2 ", key[2:]
	}

	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			r = unicode.ToUpper(r)
		case unicode.IsUpper(r):
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return prefix + b.String()
}

var funcs = template.FuncMap{"clean": clean, "paragraphs": paragraphs}

var emailTmpl = template.Must(template.New("email").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: Georgia, serif; color: #222; max-width: 680px; margin: 0 auto; padding: 16px;">
<h1>{{.Title}}</h1>
<p><strong>Your question:</strong> {{clean .Report.Question}}</p>
<h2>Answer</h2>
<p>{{clean .Report.ShortAnswer}}</p>
{{- with .Report.Summary}}
<p>{{clean .}}</p>
{{- end}}
{{- with .Report.CompatScore}}
<p><strong>Compatibility score:</strong> {{.}} / 100</p>
{{- end}}
{{- if .Report.KeyPoints}}
<h2>Key Points</h2>
<ul>
{{- range .Report.KeyPoints}}
<li>{{clean .}}</li>
{{- end}}
</ul>
{{- end}}
{{- with .Report.Explanation}}
<h2>Explanation</h2>
<p>{{clean .}}</p>
{{- end}}
{{- if .Report.Recommendations}}
<h2>Recommendations</h2>
<ul>
{{- range .Report.Recommendations}}
<li>{{clean .}}</li>
{{- end}}
</ul>
{{- end}}
{{- range .Sections}}
<h2>{{.Heading}}</h2>
{{- with .Lead}}
<p><em>{{clean .}}</em></p>
{{- end}}
{{- if .Rows}}
<table cellpadding="6" style="border-collapse: collapse; width: 100%;">
{{- range .Rows}}
<tr><th align="left" valign="top" style="border-bottom: 1px solid #ddd;">{{.Label}}</th><td style="border-bottom: 1px solid #ddd;">{{clean .Value}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- end}}
<hr>
<p style="font-size: 12px; color: #777;">{{.Disclaimer}}</p>
</body>
</html>
`))

// HTML renders the email body.
func HTML(r types.Report) (string, error) {
	data := struct {
		Title      string
		Disclaimer string
		Report     types.Report
		Sections   []Section
	}{Title, Disclaimer, r, Sections(r)}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering report html: %w", err)
	}
	return buf.String(), nil
}

// Subject is the email subject line for a report of the given mode.
func Subject(mode types.Mode) string {
	switch mode {
	case types.ModeTechnical:
		return "Your Technical Insight Report"
	case types.ModeCompat:
		return "Your Compatibility Report"
	default:
		return "Your Personal Insight Report"
	}
}

// PDFName is the attachment file name for a report of the given mode.
func PDFName(mode types.Mode) string {
	if mode == "" {
		mode = types.ModePersonal
	}
	return "insight-report-" + string(mode) + ".pdf"
}
