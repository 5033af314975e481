// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/internal/pdf"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = func() time.Time { return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) }

// routedGenerator answers prompts containing a marker with a fixed reply or
// error and delegates the rest to the mock. It records the prompt order.
type routedGenerator struct {
	mock   *generate.Mock
	routes map[string]string
	fail   map[string]error

	mu    sync.Mutex
	order []string
}

func newRouted() *routedGenerator {
	return &routedGenerator{mock: generate.NewMock(), routes: map[string]string{}, fail: map[string]error{}}
}

func (g *routedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.order = append(g.order, firstLine(prompt))
	g.mu.Unlock()

	for marker, err := range g.fail {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, reply := range g.routes {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return g.mock.Generate(ctx, prompt)
}

func (g *routedGenerator) indexOf(prefix string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, l := range g.order {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

const (
	classifyMarker  = "Classify the question"
	technicalMarker = "senior engineer"
	astroMarker     = "professional astrologer"
)

func personalQuestion() types.Question {
	return types.Question{
		Text:    "  Will I get promoted this year?  ",
		Details: &types.PersonalDetails{FullName: "Ada", BirthDate: "1990-05-15", BirthCity: "London"},
	}
}

func TestRun_MissingQuestion(t *testing.T) {
	_, err := New(generate.NewMock(), nil).Run(context.Background(), types.Question{Text: "   "})
	assert.ErrorIs(t, err, ErrMissingQuestion)
}

func TestRun_PersonalWithMock(t *testing.T) {
	gen := newRouted()
	r, err := New(gen, nil, WithClock(fixedNow)).Run(context.Background(), personalQuestion())
	require.NoError(t, err)

	assert.Equal(t, types.ModePersonal, r.Mode)
	assert.Equal(t, "Will I get promoted this year?", r.Question)
	assert.Equal(t, types.SourceExternal, r.Classification.Source)
	assert.Equal(t, "Sample shortAnswer.", r.ShortAnswer)
	assert.Equal(t, "Sample summary.", r.Summary)

	require.NotNil(t, r.EngineResults)
	assert.Equal(t, "Sample lifeLine.", r.EngineResults.Palmistry.Get("lifeLine"))
	assert.Equal(t, "Sample career.", r.EngineResults.Astrology.Get("career"))
	assert.Equal(t, "3", r.EngineResults.Numerology.Get("lifePath"))
	assert.Equal(t, "Sample interpretation.", r.EngineResults.Triad.AstroInterpretation)
	assert.Nil(t, r.EngineResults.Compat)
	assert.Equal(t, 3, r.NumerologyProfile.PersonalYear)

	// The classifier runs first and the combining step after all three engines.
	assert.Equal(t, 0, gen.indexOf("Classify the question"))
	combine := gen.indexOf("You combine")
	for _, prefix := range []string{"You are an experienced palm reader", "You are a professional astrologer", "You are a numerologist"} {
		i := gen.indexOf(prefix)
		require.GreaterOrEqual(t, i, 0, prefix)
		assert.Less(t, i, combine, prefix)
	}
	assert.Equal(t, -1, gen.indexOf("Answer the following question"), "direct answer only runs when the triad has none")
}

func TestRun_CompatScoreClamped(t *testing.T) {
	gen := newRouted()
	gen.routes["assessing the compatibility"] = `{"score": 150, "summary": "Made for each other."}`

	q := personalQuestion()
	q.Partner = &types.PersonalDetails{FullName: "Charles", BirthDate: "1791-12-26"}
	r, err := New(gen, nil, WithClock(fixedNow)).Run(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, types.ModeCompat, r.Mode)
	require.NotNil(t, r.CompatScore)
	assert.Equal(t, 100, *r.CompatScore)
	assert.Equal(t, "Made for each other.", r.EngineResults.Compat.Summary())
	assert.Equal(t, "Charles", r.PartnerDetails.FullName)
	assert.Greater(t, gen.indexOf("You are an astrologer and numerologist"), gen.indexOf("You are a professional astrologer"))
}

func TestRun_OneEngineFailing(t *testing.T) {
	gen := newRouted()
	gen.fail[astroMarker] = errors.New("upstream 500")

	r, err := New(gen, nil, WithClock(fixedNow)).Run(context.Background(), personalQuestion())
	require.NoError(t, err)

	assert.Equal(t, types.Placeholder, r.EngineResults.Astrology.Summary())
	assert.Equal(t, "Sample summary.", r.EngineResults.Palmistry.Summary())
	assert.Equal(t, types.Placeholder, r.EngineResults.Triad.AstroInterpretation)
	assert.Equal(t, "Sample interpretation.", r.EngineResults.Triad.PalmInterpretation)
}

func TestRun_Technical(t *testing.T) {
	gen := newRouted()
	gen.routes[classifyMarker] = `{"type":"technical","confidence":0.95}`

	r, err := New(gen, nil).Run(context.Background(), types.Question{Text: "How does TCP congestion control work?"})
	require.NoError(t, err)

	assert.Equal(t, types.ModeTechnical, r.Mode)
	assert.Equal(t, "Sample shortAnswer.", r.ShortAnswer)
	assert.Len(t, r.KeyPoints, 3)
	assert.Nil(t, r.EngineResults)
	assert.Equal(t, -1, gen.indexOf("You are a professional astrologer"))
	assert.Equal(t, -1, gen.indexOf("Answer the following question"))
}

func TestRun_TechnicalFallsBackToDirectAnswer(t *testing.T) {
	gen := newRouted()
	gen.routes[classifyMarker] = `{"type":"technical","confidence":0.95}`
	gen.fail[technicalMarker] = errors.New("timeout")

	r, err := New(gen, nil).Run(context.Background(), types.Question{Text: "What is a monad?"})
	require.NoError(t, err)

	assert.Equal(t, "Sample answer.", r.ShortAnswer)
	assert.Equal(t, []string{types.Placeholder, types.Placeholder, types.Placeholder}, r.KeyPoints)
}

func TestRun_NoDependency(t *testing.T) {
	r, err := New(nil, nil, WithClock(fixedNow)).Run(context.Background(), types.Question{
		Text:    "Will I get promoted this year?",
		Details: &types.PersonalDetails{BirthDate: "1990-05-15"},
	})
	require.NoError(t, err)

	assert.Equal(t, types.Classification{Type: types.QuestionPersonal, Confidence: 0.55, Source: types.SourceFallback}, r.Classification)
	assert.Equal(t, types.ModePersonal, r.Mode)
	assert.Equal(t, "3", r.EngineResults.Numerology.Get("lifePath"))
	assert.Equal(t, types.Placeholder, r.ShortAnswer)
	assert.True(t, strings.HasPrefix(r.EngineResults.Triad.Timeline, "Personal year 3"))
}

func TestRun_Concurrent(t *testing.T) {
	p := New(generate.NewMock(), nil, WithClock(fixedNow))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := p.Run(context.Background(), personalQuestion())
			assert.NoError(t, err)
			assert.Equal(t, types.ModePersonal, r.Mode)
		}()
	}
	wg.Wait()
}

type fakePrinter struct {
	data []byte
	err  error
}

func (f fakePrinter) Print(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

func TestRender(t *testing.T) {
	r, err := New(generate.NewMock(), nil, WithClock(fixedNow)).Run(context.Background(), personalQuestion())
	require.NoError(t, err)

	tests := []struct {
		name     string
		opts     []Option
		wantPDF  bool
		wantName string
	}{
		{name: "no printer"},
		{name: "printer", opts: []Option{WithPrinter(fakePrinter{data: []byte("%PDF-1.7")})}, wantPDF: true, wantName: "insight-report-personal.pdf"},
		{name: "printer fails", opts: []Option{WithPrinter(fakePrinter{err: errors.New("chrome crashed")})}},
		{name: "printing disabled", opts: []Option{WithPrinter(fakePrinter{err: pdf.ErrDisabled})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(nil, nil, tt.opts...).Render(context.Background(), r)
			require.NoError(t, err)

			assert.Equal(t, "Your Personal Insight Report", out.Subject)
			assert.Contains(t, out.HTML, "<h2>Astrology</h2>")
			assert.Contains(t, out.Text, "Personalized interpretation for Life Path 3")
			assert.Equal(t, tt.wantPDF, len(out.PDF) > 0)
			assert.Equal(t, tt.wantName, out.PDFName)
		})
	}
}
