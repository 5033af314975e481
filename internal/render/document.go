// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// BlockKind names the layout role of a Block.
type BlockKind string

const (
	BlockTitle    BlockKind = "title"
	BlockQuestion BlockKind = "question"
	BlockAnswer   BlockKind = "answer"
	BlockList     BlockKind = "list"
	BlockNotes    BlockKind = "notes"
	BlockSection  BlockKind = "section"
	BlockFooter   BlockKind = "footer"
)

// Block is one element of the sequential document flow.
type Block struct {
	Kind    BlockKind
	Heading string
	Text    string
	Items   []string
	Rows    []Row
}

// Document is the paginated report layout: title, question, answer, the
// mode's sections and the disclaimer footer.
type Document struct {
	Title  string
	Blocks []Block
}

// NewDocument lays out r.
func NewDocument(r types.Report) Document {
	d := Document{Title: Title}
	d.add(Block{Kind: BlockTitle, Text: Title})
	d.add(Block{Kind: BlockQuestion, Heading: "Your Question", Text: r.Question})

	answer := r.ShortAnswer
	if r.Summary != "" && r.Summary != r.ShortAnswer {
		answer += "\n\n" + r.Summary
	}
	if r.CompatScore != nil {
		answer += "\n\nCompatibility score: " + strconv.Itoa(*r.CompatScore) + " / 100"
	}
	d.add(Block{Kind: BlockAnswer, Heading: "Answer", Text: answer})

	if r.Mode == types.ModeTechnical {
		d.add(Block{Kind: BlockList, Heading: "Key Points", Items: r.KeyPoints})
		if r.Explanation != "" || len(r.Recommendations) > 0 {
			d.add(Block{Kind: BlockNotes, Heading: "Notes", Text: r.Explanation, Items: r.Recommendations})
		}
	} else {
		for _, s := range Sections(r) {
			d.add(Block{Kind: BlockSection, Heading: s.Heading, Text: s.Lead, Rows: s.Rows})
		}
	}

	d.add(Block{Kind: BlockFooter, Text: Disclaimer})
	return d
}

func (d *Document) add(b Block) {
	d.Blocks = append(d.Blocks, b)
}

// Text renders the document as plain text. Values are written verbatim.
func (d Document) Text() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		switch blk.Kind {
		case BlockTitle:
			fmt.Fprintf(&b, "%s\n%s\n", blk.Text, strings.Repeat("=", len([]rune(blk.Text))))
		case BlockFooter:
			fmt.Fprintf(&b, "\n---\n%s\n", blk.Text)
		default:
			fmt.Fprintf(&b, "\n%s\n", blk.Heading)
			if blk.Text != "" {
				fmt.Fprintf(&b, "%s\n", blk.Text)
			}
			for _, item := range blk.Items {
				fmt.Fprintf(&b, "  * %s\n", item)
			}
			for _, row := range blk.Rows {
				fmt.Fprintf(&b, "  %s: %s\n", row.Label, row.Value)
				if row.Meaning != "" {
					fmt.Fprintf(&b, "    %s\n", row.Meaning)
				}
			}
		}
	}
	return b.String()
}

var printTmpl = template.Must(template.New("print").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 20mm; }
body { font-family: Georgia, serif; font-size: 11pt; color: #222; }
h1 { font-size: 22pt; border-bottom: 2px solid #333; padding-bottom: 4pt; }
h2 { font-size: 14pt; margin-top: 18pt; page-break-after: avoid; }
table { width: 100%; border-collapse: collapse; }
th { text-align: left; vertical-align: top; width: 30%; padding: 4pt; }
td { padding: 4pt; }
tr { border-bottom: 1px solid #ddd; page-break-inside: avoid; }
.meaning { font-size: 9pt; color: #666; font-style: italic; }
.footer { margin-top: 24pt; font-size: 8pt; color: #777; border-top: 1px solid #ccc; padding-top: 6pt; }
</style>
</head>
<body>
{{- range .Blocks}}
{{- if eq .Kind "title"}}
<h1>{{.Text}}</h1>
{{- else if eq .Kind "footer"}}
<div class="footer">{{clean .Text}}</div>
{{- else}}
<h2>{{.Heading}}</h2>
{{- range paragraphs .Text}}
<p>{{clean .}}</p>
{{- end}}
{{- if .Items}}
<ul>
{{- range .Items}}
<li>{{clean .}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .Rows}}
<table>
{{- range .Rows}}
<tr><th>{{.Label}}</th><td>{{clean .Value}}{{with .Meaning}}<div class="meaning">{{clean .}}</div>{{end}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- end}}
{{- end}}
</body>
</html>
`))

// paragraphs splits text on blank lines.
func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Markup renders the document as print-oriented HTML for the PDF printer.
func (d Document) Markup() (string, error) {
	var buf bytes.Buffer
	if err := printTmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering report document: %w", err)
	}
	return buf.String(), nil
}
