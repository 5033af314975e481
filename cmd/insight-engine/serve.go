// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/captcha"
	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/internal/mail"
	"github.com/pdiddy/insight-engine/internal/pdf"
	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/internal/server"
	"github.com/pdiddy/insight-engine/internal/upload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP report service",
	Long: `Serve accepts report requests on POST /api/report, verifies the captcha
token, runs the pipeline and emails the rendered report (with a PDF
attachment when printing is enabled). GET /healthz reports liveness.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gen, err := generate.New(ctx, cfg.AI, logger)
		if err != nil {
			return fmt.Errorf("generation backend: %w", err)
		}
		sender, err := mail.New(cfg.Mail, logger)
		if err != nil {
			return fmt.Errorf("mail backend: %w", err)
		}
		if !cfg.Captcha.Disabled && cfg.Captcha.Secret == "" {
			logger.Warn("captcha secret is empty; every request will be rejected")
		}

		printer := pdf.NewRodPrinter(cfg.PDF, logger)
		defer func() {
			if err := printer.Close(); err != nil {
				logger.Warn("closing browser", zap.Error(err))
			}
		}()

		p := pipeline.New(gen, logger, pipeline.WithPrinter(printer))
		srv := server.New(cfg.Server, p, captcha.New(cfg.Captcha), sender, upload.New(cfg.Upload), logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("pdf", false, "attach a PDF rendering to every report")
	serveCmd.Flags().Bool("no-captcha", false, "skip captcha verification (local development only)")
	serveCmd.Flags().String("mail-backend", "", "mail delivery backend: resend or log")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("pdf.enabled", serveCmd.Flags().Lookup("pdf"))
	_ = viper.BindPFlag("captcha.disabled", serveCmd.Flags().Lookup("no-captcha"))
	_ = viper.BindPFlag("mail.backend", serveCmd.Flags().Lookup("mail-backend"))

	rootCmd.AddCommand(serveCmd)
}
