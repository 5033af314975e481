// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// --- stub generators ---

type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type imageStub struct {
	stubGenerator
	images int
}

func (s *imageStub) GenerateWithImage(ctx context.Context, prompt string, _ types.Image) (string, error) {
	s.images++
	return s.Generate(ctx, prompt)
}

// --- Validate ---

func TestValidate(t *testing.T) {
	spec := Spec{Name: "test", Fields: []string{"summary", "a", "b"}}

	tests := []struct {
		name       string
		raw        string
		wantStatus Status
		wantA      string
	}{
		{name: "all fields", raw: `{"summary":"s","a":"x","b":"y"}`, wantStatus: StatusOK, wantA: "x"},
		{name: "fenced", raw: "```json\n{\"summary\":\"s\",\"a\":\"x\",\"b\":\"y\"}\n```", wantStatus: StatusOK, wantA: "x"},
		{name: "missing field", raw: `{"summary":"s","a":"x"}`, wantStatus: StatusDegraded, wantA: "x"},
		{name: "blank field", raw: `{"summary":"s","a":"  ","b":"y"}`, wantStatus: StatusDegraded, wantA: ""},
		{name: "unrecognised field set", raw: `{"foo":"bar"}`, wantStatus: StatusFailed},
		{name: "malformed", raw: `{"summary": `, wantStatus: StatusFailed},
		{name: "not json", raw: `I cannot help with that.`, wantStatus: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Validate(spec, tt.raw)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, types.EngineName("test"), out.Engine)
			if tt.wantStatus == StatusFailed {
				assert.NotEmpty(t, out.Reason)
				assert.False(t, out.Available())
				assert.Nil(t, out.ResultOrNil())
				return
			}
			assert.Equal(t, tt.wantA, out.Result.Get("a"))
			require.Len(t, out.Result.Fields, 3)
			assert.Equal(t, "summary", out.Result.Fields[0].Key)
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "hi", Stringify("  hi "))
	assert.Equal(t, "72", Stringify(float64(72)))
	assert.Equal(t, "0.5", Stringify(0.5))
	assert.Equal(t, "yes", Stringify(true))
	assert.Equal(t, "a; b", Stringify([]any{"a", "", "b"}))
	assert.Equal(t, "sun: Leo; moon: Aries", Stringify(map[string]any{"sun": "Leo", "moon": "Aries"}))
}

func TestSpecShape(t *testing.T) {
	spec := Spec{Fields: []string{"score", "summary"}, Examples: map[string]string{"score": "72"}}
	assert.Equal(t, `{"score": 72, "summary": "string"}`, spec.Shape())
}

func TestCompatFields(t *testing.T) {
	assert.Len(t, CompatFields, 2+20+4)
	assert.Equal(t, "score", CompatFields[0])
	assert.Equal(t, "p1Sun", CompatFields[2])
	assert.Equal(t, "p2Sun", CompatFields[3])
	assert.Equal(t, "overall", CompatFields[len(CompatFields)-1])
}

// --- Runner ---

func TestRunner_NilGenerator(t *testing.T) {
	out := NewRunner(nil, nil).Run(context.Background(), answerSpec, "q", nil)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, ErrUnavailable.Error(), out.Reason)
}

func TestRunner_GeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}
	out := NewRunner(gen, nil).Run(context.Background(), answerSpec, "q", nil)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Contains(t, out.Reason, "timeout")
}

func TestRunner_PromptEndsWithShape(t *testing.T) {
	gen := &stubGenerator{reply: `{"answer":"42"}`}
	out := NewRunner(gen, nil).Run(context.Background(), answerSpec, "What is six times seven?", nil)

	require.Equal(t, StatusOK, out.Status)
	assert.Equal(t, "42", out.Result.Get("answer"))
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "What is six times seven?")
	assert.True(t, strings.HasSuffix(gen.prompts[0], `{"answer": "string"}`+"\n"))
}

// --- Engines ---

func TestPalmistry_UsesImageWhenPresent(t *testing.T) {
	gen := &imageStub{stubGenerator: stubGenerator{reply: `{"summary":"strong hands"}`}}
	e := New(gen, nil)

	q := types.Question{Text: "Will I travel?", Image: &types.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}}
	out := e.Palmistry(context.Background(), q)

	assert.Equal(t, StatusDegraded, out.Status)
	assert.Equal(t, "strong hands", out.Result.Summary())
	assert.Equal(t, 1, gen.images)
	assert.Contains(t, gen.prompts[0], "attached photo")

	// Without an image the text path is used.
	out = e.Palmistry(context.Background(), types.Question{Text: "Will I travel?"})
	assert.True(t, out.Available())
	assert.Equal(t, 1, gen.images)
	assert.Contains(t, gen.prompts[1], "No photo was supplied")
}

func TestAstrology_PromptDescribesPerson(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary":"ok"}`}
	q := types.Question{
		Text: "Is this my year?",
		Details: &types.PersonalDetails{
			FullName:     "Ada Lovelace",
			BirthDate:    "1815-12-10",
			BirthTime:    "Unknown",
			BirthCity:    "London",
			BirthCountry: "UK",
		},
	}
	New(gen, nil).Astrology(context.Background(), q)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "Name: Ada Lovelace")
	assert.Contains(t, p, "Birth date: 1815-12-10")
	assert.Contains(t, p, "Birth place: London, UK")
	assert.NotContains(t, p, "Birth time:")
}

func TestNumerology_PromptCarriesComputedNumbers(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary":"ok"}`}
	profile := &types.NumerologyProfile{LifePath: 3, PersonalYear: 8}
	New(gen, nil).Numerology(context.Background(), types.Question{Text: "q"}, profile)

	assert.Contains(t, gen.prompts[0], "Computed life path: 3")
	assert.Contains(t, gen.prompts[0], "Computed personal year: 8")
}

func TestSummary_SkipsWhenNothingAvailable(t *testing.T) {
	gen := &stubGenerator{reply: `{"summary":"s"}`}
	e := New(gen, nil)

	out := e.Summary(context.Background(), "q", Outcome{Engine: types.EngineAstrology, Status: StatusFailed})
	assert.Equal(t, StatusFailed, out.Status)
	assert.Empty(t, gen.prompts)

	astro := Outcome{
		Engine: types.EngineAstrology,
		Status: StatusOK,
		Result: types.EngineResult{Fields: []types.Field{{Key: "summary", Value: "Venus rising"}}},
	}
	out = e.Summary(context.Background(), "q", astro)
	assert.Equal(t, StatusOK, out.Status)
	assert.Contains(t, gen.prompts[0], "astrology: Venus rising")
}

func TestCompatibility_KeepsRawScore(t *testing.T) {
	gen := &stubGenerator{reply: `{"score":150,"summary":"a fiery pair"}`}
	req := CompatRequest{
		Question: types.Question{
			Text:    "Are we a match?",
			Details: &types.PersonalDetails{FullName: "A"},
			Partner: &types.PersonalDetails{FullName: "B"},
		},
	}
	out := New(gen, nil).Compatibility(context.Background(), req)

	assert.Equal(t, StatusDegraded, out.Status)
	assert.Equal(t, "150", out.Result.Get("score"))
	assert.Contains(t, gen.prompts[0], "Name: A")
	assert.Contains(t, gen.prompts[0], "Name: B")
}

func TestTechnical(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantStatus Status
		wantPoints int
	}{
		{
			name:       "arrays",
			reply:      `{"shortAnswer":"Use a mutex.","keyPoints":["a","b","c"],"explanation":"e","recommendations":["r"]}`,
			wantStatus: StatusOK,
			wantPoints: 3,
		},
		{
			name:       "string lists",
			reply:      `{"shortAnswer":"s","keyPoints":"- one\n- two\n- three","explanation":"e","recommendations":"r1; r2"}`,
			wantStatus: StatusOK,
			wantPoints: 3,
		},
		{
			name:       "partial",
			reply:      `{"shortAnswer":"s"}`,
			wantStatus: StatusDegraded,
		},
		{
			name:       "empty",
			reply:      `{}`,
			wantStatus: StatusFailed,
		},
		{
			name:       "garbage",
			reply:      `no`,
			wantStatus: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(&stubGenerator{reply: tt.reply}, nil).Technical(context.Background(), "How do I avoid data races?")
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Len(t, out.Result.KeyPoints, tt.wantPoints)
		})
	}
}

func TestToList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, toList([]any{"a", " ", "b"}))
	assert.Equal(t, []string{"one", "two"}, toList("* one\n• two\n"))
	assert.Empty(t, toList(nil))
	assert.Empty(t, toList(float64(3)))
}
