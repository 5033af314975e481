//go:build mage

// Package main contains Mage build targets for insight-engine developer tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "insight-engine"
	cmdPkg  = "./cmd/insight-engine"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	mg.Deps(Lint)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. The browser-backed PDF test is skipped under -short.
func Test() error {
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// TestAll runs every test including the headless browser PDF test.
func TestAll() error {
	mg.Deps(Test)
	return sh.RunV("go", "test", "-run", "Integration", "./internal/pdf/...")
}

// Lint runs go vet over the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Serve runs the HTTP service with the mock backend, log mail and no captcha.
func Serve() error {
	mg.Deps(Build)
	return sh.RunWithV(map[string]string{
		"INSIGHT_ENGINE_AI_BACKEND":       "mock",
		"INSIGHT_ENGINE_MAIL_BACKEND":     "log",
		"INSIGHT_ENGINE_CAPTCHA_DISABLED": "true",
	}, filepath.Join(binDir, binName), "serve", "--verbose")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports whether a directory holds no project sources: hidden
// directories, underscore-prefixed reference trees and build output.
func skipDir(path string, d fs.DirEntry) bool {
	name := d.Name()
	if path == "." {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir
}

// walkFiles calls fn for every regular file under root that keep accepts.
func walkFiles(root string, keep func(path string) bool, fn func(data []byte)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if skipDir(path, d) {
				return filepath.SkipDir
			}
			return nil
		}
		if !keep(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fn(data)
		return nil
	})
}

// countGoLines counts non-blank lines in Go files. If testOnly is true, count
// only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := walkFiles(root, func(path string) bool {
		return filepath.Ext(path) == ".go" && strings.HasSuffix(path, "_test.go") == testOnly
	}, func(data []byte) {
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				total++
			}
		}
	})
	return total, err
}

// countDocWords counts words in Markdown and YAML files.
func countDocWords(root string) (int, error) {
	total := 0
	err := walkFiles(root, func(path string) bool {
		switch filepath.Ext(path) {
		case ".md", ".yaml", ".yml":
			return true
		}
		return false
	}, func(data []byte) {
		total += len(bytes.Fields(data))
	})
	return total, err
}
