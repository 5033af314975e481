// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server is the HTTP intake for report requests. It validates the
// form, gates on the CAPTCHA, validates the upload, runs the pipeline and
// mails the rendered report.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	netmail "net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/captcha"
	"github.com/pdiddy/insight-engine/internal/mail"
	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/internal/upload"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Reporter runs and renders reports.
type Reporter interface {
	Run(ctx context.Context, q types.Question) (types.Report, error)
	Render(ctx context.Context, r types.Report) (pipeline.RenderedOutput, error)
}

// Server wires the intake collaborators.
type Server struct {
	cfg      types.ServerConfig
	reporter Reporter
	verifier captcha.Verifier
	sender   mail.Sender
	uploads  upload.Validator
	log      *zap.Logger
}

// New returns a Server.
func New(cfg types.ServerConfig, reporter Reporter, verifier captcha.Verifier, sender mail.Sender, uploads upload.Validator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, reporter: reporter, verifier: verifier, sender: sender, uploads: uploads, log: log}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/report", s.handleReport)
	return chainMiddlewares(mux, withLogging(s.log), withCORS(s.cfg.AllowedOrigin), withRequestID)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type reportResponse struct {
	OK       bool       `json:"ok"`
	Mode     types.Mode `json:"mode"`
	ReportID string     `json:"reportId"`
}

// multipartOverhead is the form budget beyond the image itself.
const multipartOverhead = 1 << 20

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	ctx := r.Context()
	log := s.log.With(zap.String("request_id", RequestID(ctx)))

	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			badRequest(w, "could not read form")
			return
		}
		if err := r.ParseForm(); err != nil {
			badRequest(w, "could not read form")
			return
		}
	}

	q, err := questionFromForm(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	token := r.FormValue("captchaToken")
	if token == "" {
		token = r.FormValue("cf-turnstile-response")
	}
	res, err := s.verifier.Verify(ctx, token, clientIP(r))
	switch {
	case errors.Is(err, captcha.ErrMissingToken):
		badRequest(w, "captcha token missing")
		return
	case err != nil:
		log.Error("captcha verification unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("captcha verification unavailable"))
		return
	case !res.OK:
		log.Info("captcha rejected", zap.Strings("codes", res.ErrorCodes))
		writeJSON(w, http.StatusForbidden, errorBody("captcha verification failed"))
		return
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["palmImage"]; len(files) > 0 {
			img, err := s.uploads.Read(files[0])
			if err != nil {
				badRequest(w, err.Error())
				return
			}
			q.Image = img
		}
	}

	report, err := s.reporter.Run(ctx, q)
	if errors.Is(err, pipeline.ErrMissingQuestion) {
		badRequest(w, err.Error())
		return
	}
	if err != nil {
		internalError(w, log, err)
		return
	}

	out, err := s.reporter.Render(ctx, report)
	if err != nil {
		internalError(w, log, err)
		return
	}

	msg := mail.Message{To: q.Email, Subject: out.Subject, HTML: out.HTML, Text: out.Text}
	if len(out.PDF) > 0 {
		msg.Attachments = []mail.Attachment{{Filename: out.PDFName, Content: out.PDF}}
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		log.Error("report delivery failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody("report could not be delivered"))
		return
	}

	log.Info("report delivered", zap.String("mode", string(report.Mode)), zap.Bool("pdf", len(out.PDF) > 0))
	writeJSON(w, http.StatusOK, reportResponse{OK: true, Mode: report.Mode, ReportID: RequestID(ctx)})
}

// questionFromForm reads and validates the text fields.
func questionFromForm(r *http.Request) (types.Question, error) {
	field := func(name string) string { return strings.TrimSpace(r.FormValue(name)) }

	q := types.Question{Text: field("question"), Email: field("email")}
	switch {
	case q.Text == "":
		return q, errors.New("question is required")
	case utf8.RuneCountInString(q.Text) > types.MaxQuestionLength:
		return q, fmt.Errorf("question must be at most %d characters", types.MaxQuestionLength)
	case q.Email == "":
		return q, errors.New("email is required")
	}
	if _, err := netmail.ParseAddress(q.Email); err != nil {
		return q, errors.New("email is invalid")
	}

	details := types.PersonalDetails{
		FullName:     field("name"),
		BirthDate:    field("birthDate"),
		BirthTime:    field("birthTime"),
		BirthCity:    field("birthCity"),
		BirthState:   field("birthState"),
		BirthCountry: field("birthCountry"),
	}
	if !details.IsEmpty() {
		q.Details = &details
	}

	partner := types.PersonalDetails{
		FullName:     field("partnerName"),
		BirthDate:    field("partnerBirthDate"),
		BirthTime:    field("partnerBirthTime"),
		BirthCity:    field("partnerBirthCity"),
		BirthState:   field("partnerBirthState"),
		BirthCountry: field("partnerBirthCountry"),
	}
	if !partner.IsEmpty() {
		q.Partner = &partner
	}
	return q, nil
}

// clientIP prefers the proxy-supplied address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody(msg))
}

func internalError(w http.ResponseWriter, log *zap.Logger, err error) {
	log.Error("report failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
}
