// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// browserBins are tried in order on PATH.
var browserBins = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

// executor abstracts binary lookup for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

var defaultExec executor = &osExecutor{}

// rodLookPath is rod's own search of well-known install locations.
var rodLookPath = launcher.LookPath

// DetectBrowser returns the path of a usable Chrome or Chromium binary. An
// explicit bin is checked first; then PATH; then rod's install locations.
func DetectBrowser(bin string) (string, error) {
	return detectBrowser(defaultExec, bin)
}

func detectBrowser(exec executor, bin string) (string, error) {
	candidates := browserBins
	if bin != "" {
		candidates = []string{bin}
	}

	for _, c := range candidates {
		path, err := exec.LookPath(c)
		if err != nil {
			continue
		}
		if exec.RunSilent(path, "--version") == nil {
			return path, nil
		}
	}

	if bin == "" {
		if path, ok := rodLookPath(); ok {
			return path, nil
		}
	}

	return "", fmt.Errorf("no headless browser available: tried %s", strings.Join(candidates, ", "))
}
