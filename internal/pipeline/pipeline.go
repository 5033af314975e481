// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one question through classification, the engines,
// the triad synthesis and the assembler, and renders the resulting Report.
//
// The classifier completes before any engine starts. Technical questions go
// to the technical engine only. Personal questions fan out to palmistry,
// astrology and the numerology narrative concurrently; the triad, summary
// and compatibility steps wait for all three. A failed engine degrades its
// section; only a missing question fails the run.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/insight-engine/internal/classify"
	"github.com/pdiddy/insight-engine/internal/engine"
	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/internal/numerology"
	"github.com/pdiddy/insight-engine/internal/pdf"
	"github.com/pdiddy/insight-engine/internal/render"
	"github.com/pdiddy/insight-engine/internal/report"
	"github.com/pdiddy/insight-engine/internal/triad"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrMissingQuestion is the one fatal pipeline error.
var ErrMissingQuestion = errors.New("question is required")

// Pipeline holds the long-lived collaborators shared by every run. It keeps
// no per-run state and is safe for concurrent use.
type Pipeline struct {
	classifier *classify.Classifier
	engines    *engine.Engines
	triad      *triad.Synthesizer
	printer    pdf.Printer
	log        *zap.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPrinter enables PDF attachments.
func WithPrinter(p pdf.Printer) Option {
	return func(pl *Pipeline) { pl.printer = p }
}

// WithClock sets the reference time for personal numerology numbers.
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) { pl.now = now }
}

// New builds a Pipeline on gen. A nil gen runs every step on its fallback.
func New(gen generate.Generator, log *zap.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	engines := engine.New(gen, log)
	p := &Pipeline{
		classifier: classify.New(gen, log),
		engines:    engines,
		triad:      triad.New(engines.Runner(), log),
		log:        log,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run produces the Report for q.
func (p *Pipeline) Run(ctx context.Context, q types.Question) (types.Report, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return types.Report{}, ErrMissingQuestion
	}
	start := time.Now()

	c := p.classifier.Classify(ctx, q.Text)
	mode := report.ModeFor(c, q)
	log := p.log.With(zap.String("mode", string(mode)))
	log.Debug("question classified",
		zap.String("type", string(c.Type)),
		zap.Float64("confidence", c.Confidence),
		zap.String("source", string(c.Source)))

	in := report.Input{
		Question:       q,
		Classification: c,
		Results:        make(map[types.EngineName]types.EngineResult),
	}

	if mode == types.ModeTechnical {
		p.runTechnical(ctx, &in)
	} else {
		p.runPersonal(ctx, &in, mode == types.ModeCompat)
	}

	r := report.Assemble(in)
	log.Info("report assembled",
		zap.Int("sections", len(in.Results)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return r, nil
}

func (p *Pipeline) runTechnical(ctx context.Context, in *report.Input) {
	tech := p.engines.Technical(ctx, in.Question.Text)
	if tech.Status != engine.StatusFailed {
		in.Technical = &tech.Result
	}
	if tech.Result.ShortAnswer == "" {
		p.collect(in, p.engines.Answer(ctx, in.Question.Text))
	}
}

func (p *Pipeline) runPersonal(ctx context.Context, in *report.Input, compat bool) {
	q := in.Question
	now := p.now()
	in.Profile = profileFor(q.Details, now)

	var palm, astro, numer engine.Outcome
	var g errgroup.Group
	g.Go(func() error { palm = p.engines.Palmistry(ctx, q); return nil })
	g.Go(func() error { astro = p.engines.Astrology(ctx, q); return nil })
	g.Go(func() error { numer = p.engines.Numerology(ctx, q, in.Profile); return nil })
	_ = g.Wait()

	p.collect(in, palm, astro, numer)

	var tri types.TriadResult
	var summary, compatOut engine.Outcome
	var join errgroup.Group
	join.Go(func() error {
		tri = p.triad.Synthesize(ctx, triad.Input{
			Question:   q.Text,
			Intent:     in.Classification,
			Astrology:  astro.ResultOrNil(),
			Numerology: numer.ResultOrNil(),
			Palmistry:  palm.ResultOrNil(),
			Profile:    in.Profile,
		})
		return nil
	})
	join.Go(func() error {
		summary = p.engines.Summary(ctx, q.Text, astro, numer, palm)
		return nil
	})
	if compat {
		join.Go(func() error {
			compatOut = p.engines.Compatibility(ctx, engine.CompatRequest{
				Question:      q,
				FirstProfile:  in.Profile,
				SecondProfile: profileFor(q.Partner, now),
				Palmistry:     palm,
				Astrology:     astro,
				Numerology:    numer,
			})
			return nil
		})
	}
	_ = join.Wait()

	p.collect(in, summary)
	if compat {
		p.collect(in, compatOut)
	}
	if tri != (types.TriadResult{}) {
		in.Triad = &tri
	}
	if tri.ShortAnswer == "" {
		p.collect(in, p.engines.Answer(ctx, q.Text))
	}
}

// collect records available outcomes and logs the rest.
func (p *Pipeline) collect(in *report.Input, outcomes ...engine.Outcome) {
	for _, o := range outcomes {
		if !o.Available() {
			p.log.Warn("engine unavailable, section degraded",
				zap.String("engine", string(o.Engine)),
				zap.String("reason", o.Reason))
			continue
		}
		in.Results[o.Engine] = o.Result
	}
}

func profileFor(d *types.PersonalDetails, now time.Time) *types.NumerologyProfile {
	if d == nil {
		return nil
	}
	prof, ok := numerology.Compute(d.BirthDate, now)
	if !ok {
		return nil
	}
	return &prof
}

// RenderedOutput is what the delivery layer sends.
type RenderedOutput struct {
	Subject string
	HTML    string
	Text    string
	PDF     []byte
	PDFName string
}

// Render produces the email body, the plain-text flow and, when a printer is
// configured, the PDF. A PDF failure leaves the attachment out.
func (p *Pipeline) Render(ctx context.Context, r types.Report) (RenderedOutput, error) {
	body, err := render.HTML(r)
	if err != nil {
		return RenderedOutput{}, err
	}
	doc := render.NewDocument(r)
	out := RenderedOutput{
		Subject: render.Subject(r.Mode),
		HTML:    body,
		Text:    doc.Text(),
	}
	if p.printer == nil {
		return out, nil
	}

	markup, err := doc.Markup()
	if err != nil {
		p.log.Warn("pdf markup failed, sending without attachment", zap.Error(err))
		return out, nil
	}
	data, err := p.printer.Print(ctx, markup)
	if err != nil {
		if !errors.Is(err, pdf.ErrDisabled) {
			p.log.Warn("pdf printing failed, sending without attachment", zap.Error(err))
		}
		return out, nil
	}
	out.PDF = data
	out.PDFName = render.PDFName(r.Mode)
	return out, nil
}
