// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf prints report markup to PDF through a headless browser.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// ErrDisabled is returned by Print when PDF output is turned off.
var ErrDisabled = errors.New("pdf printing disabled")

// Printer turns print-oriented HTML into PDF bytes.
type Printer interface {
	Print(ctx context.Context, markup string) ([]byte, error)
}

const defaultPrintTimeout = 30 * time.Second

// RodPrinter drives Chrome through go-rod. The browser is started on the
// first Print and reused until Close. Pages are per call.
type RodPrinter struct {
	cfg types.PDFConfig
	log *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

// NewRodPrinter returns a printer; nothing is launched yet.
func NewRodPrinter(cfg types.PDFConfig, log *zap.Logger) *RodPrinter {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPrintTimeout
	}
	return &RodPrinter{cfg: cfg, log: log}
}

// Print renders markup on a fresh page and prints it with background
// graphics, honouring the markup's CSS page size.
func (p *RodPrinter) Print(ctx context.Context, markup string) ([]byte, error) {
	if !p.cfg.Enabled {
		return nil, ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	browser, err := p.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(markup); err != nil {
		return nil, fmt.Errorf("loading markup: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for page load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("printing pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading pdf stream: %w", err)
	}

	p.log.Debug("pdf printed", zap.Int("bytes", len(data)))
	return data, nil
}

// connect attaches to cfg.ControlURL or launches a local browser once.
func (p *RodPrinter) connect() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		if _, err := p.browser.Version(); err == nil {
			return p.browser, nil
		}
		p.log.Warn("stale browser connection, reconnecting")
		p.closeLocked()
	}

	controlURL := p.cfg.ControlURL
	if controlURL == "" {
		bin, err := DetectBrowser(p.cfg.BrowserBin)
		if err != nil {
			return nil, err
		}
		l := launcher.New().Bin(bin).Headless(true).Leakless(false)
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching %s: %w", bin, err)
		}
		p.launched = l
		controlURL = url
		p.log.Info("headless browser launched", zap.String("bin", bin))
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		p.closeLocked()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	p.browser = browser
	return browser, nil
}

// Close shuts the browser down. The printer may be used again afterwards.
func (p *RodPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *RodPrinter) closeLocked() error {
	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
	}
	if p.launched != nil {
		p.launched.Kill()
		p.launched = nil
	}
	return err
}
