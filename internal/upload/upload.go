// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload validates palm-photo uploads before the pipeline sees them.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 10 << 20

// DefaultExtensions are accepted when none are configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".heic"}

// Validation errors.
var (
	ErrExtension = errors.New("file type not allowed")
	ErrTooLarge  = errors.New("file too large")
	ErrNotImage  = errors.New("file content is not an image")
	ErrEmpty     = errors.New("file is empty")
)

// extensionTypes covers extensions the content sniffer does not recognise.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

// Validator checks name, size and content of an upload.
type Validator struct {
	MaxBytes   int64
	Extensions []string
}

// New returns a Validator for cfg, filling defaults.
func New(cfg types.UploadConfig) Validator {
	v := Validator{MaxBytes: cfg.MaxBytes, Extensions: cfg.AllowedExtensions}
	if v.MaxBytes <= 0 {
		v.MaxBytes = DefaultMaxBytes
	}
	if len(v.Extensions) == 0 {
		v.Extensions = DefaultExtensions
	}
	return v
}

// Validate checks the file name, the declared size and the first bytes.
func (v Validator) Validate(filename string, size int64, head []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(v.Extensions, ext) {
		return fmt.Errorf("%w: %q", ErrExtension, ext)
	}
	if size > v.MaxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, v.MaxBytes)
	}
	if size == 0 || len(head) == 0 {
		return ErrEmpty
	}
	if _, ok := sniff(head); !ok {
		return ErrNotImage
	}
	return nil
}

// sniff returns the detected image type. ok is false only when the content
// is recognisably something other than an image.
func sniff(head []byte) (mimeType string, ok bool) {
	ct := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return ct, true
	case ct == "application/octet-stream":
		return "", true
	default:
		return ct, false
	}
}

// Read validates a multipart file and loads it.
func (v Validator) Read(fh *multipart.FileHeader) (*types.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	return v.load(fh.Filename, fh.Size, f)
}

// ReadFile validates and loads an image from disk.
func (v Validator) ReadFile(path string) (*types.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	return v.load(path, info.Size(), f)
}

func (v Validator) load(filename string, declared int64, r io.Reader) (*types.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, v.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	size := int64(len(data))
	if declared > size {
		size = declared
	}
	if err := v.Validate(filename, size, data); err != nil {
		return nil, err
	}

	mimeType, _ := sniff(data)
	if mimeType == "" {
		mimeType = extensionTypes[strings.ToLower(filepath.Ext(filename))]
	}
	return &types.Image{Filename: filepath.Base(filename), MIMEType: mimeType, Data: data}, nil
}
