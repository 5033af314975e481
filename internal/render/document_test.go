// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_Technical(t *testing.T) {
	r := technicalReport()
	got := NewDocument(r)

	want := Document{
		Title: Title,
		Blocks: []Block{
			{Kind: BlockTitle, Text: Title},
			{Kind: BlockQuestion, Heading: "Your Question", Text: "How do I avoid data races?"},
			{Kind: BlockAnswer, Heading: "Answer", Text: "Share memory by communicating."},
			{Kind: BlockList, Heading: "Key Points", Items: r.KeyPoints},
			{Kind: BlockNotes, Heading: "Notes", Text: "Go's memory model needs synchronisation.", Items: []string{"Add -race to CI."}},
			{Kind: BlockFooter, Text: Disclaimer},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewDocument mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDocument_Personal(t *testing.T) {
	d := NewDocument(personalReport())

	var kinds []BlockKind
	var headings []string
	for _, b := range d.Blocks {
		kinds = append(kinds, b.Kind)
		headings = append(headings, b.Heading)
	}
	assert.Equal(t, []BlockKind{BlockTitle, BlockQuestion, BlockAnswer, BlockSection, BlockSection, BlockSection, BlockFooter}, kinds)
	assert.Equal(t, []string{"", "Your Question", "Answer", "Your Details", "Astrology", "Numerology", ""}, headings)
	assert.Equal(t, "Likely, in spring.\n\nA strong year.", d.Blocks[2].Text)
}

func TestDocument_Text(t *testing.T) {
	text := NewDocument(personalReport()).Text()

	assert.True(t, strings.HasPrefix(text, Title+"\n"+strings.Repeat("=", len(Title))+"\n"))
	assert.Contains(t, text, "\nNumerology\nLife path 3\n  Life Path: 3\n    Personalized interpretation for Life Path 3\n")
	assert.True(t, strings.HasSuffix(text, Disclaimer+"\n"))
}

func TestNewDocument_TechnicalWithoutNotes(t *testing.T) {
	r := technicalReport()
	r.Explanation = ""
	r.Recommendations = nil

	d := NewDocument(r)
	for _, b := range d.Blocks {
		assert.NotEqual(t, BlockNotes, b.Kind)
	}
	assert.NotContains(t, d.Text(), "Notes")

	out, err := d.Markup()
	require.NoError(t, err)
	assert.NotContains(t, out, "<h2>Notes</h2>")
	assert.NotContains(t, out, "<h2></h2>")
}

func TestDocument_TextKeepsMarkupVerbatim(t *testing.T) {
	r := technicalReport()
	r.Question = "What is the difference between <div> and <span>?"
	r.ShortAnswer = "A <div> is block-level."
	r.KeyPoints = []string{"Use <br> for line breaks"}

	text := NewDocument(r).Text()
	assert.Contains(t, text, "What is the difference between <div> and <span>?\n")
	assert.Contains(t, text, "A <div> is block-level.\n")
	assert.Contains(t, text, "  * Use <br> for line breaks\n")

	out, err := NewDocument(r).Markup()
	require.NoError(t, err)
	assert.Contains(t, out, "<p>What is the difference between &lt;div&gt; and &lt;span&gt;?</p>")
	assert.Contains(t, out, "<li>Use &lt;br&gt; for line breaks</li>")
}

func TestDocument_Markup(t *testing.T) {
	r := technicalReport()
	r.Explanation = "First paragraph.\n\n<i>Second</i> paragraph."

	out, err := NewDocument(r).Markup()
	require.NoError(t, err)

	assert.Contains(t, out, "@page { size: A4;")
	assert.Contains(t, out, "<h1>Your Insight Report</h1>")
	assert.Contains(t, out, "<p>First paragraph.</p>")
	assert.Contains(t, out, "<p>&lt;i&gt;Second&lt;/i&gt; paragraph.</p>")
	assert.Contains(t, out, `<div class="footer">`)

	pm, err := NewDocument(personalReport()).Markup()
	require.NoError(t, err)
	assert.Contains(t, pm, `<div class="meaning">Personalized interpretation for Life Path 3</div>`)
}
