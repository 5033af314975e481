// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/insight-engine/internal/generate"
	"github.com/pdiddy/insight-engine/internal/pdf"
	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/internal/upload"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report \"question\"",
	Short: "Run the pipeline once and print the report",
	Long: `Report classifies the question, runs the reading engines and prints the
assembled report as YAML, JSON or plain text. Birth details enable the
personal readings; partner details switch to a compatibility report. The
rendered email body and a PDF can be written alongside.`,
	Example: `  insight-engine report "Will I change careers this year?" --name "Ada Lovelace" --birth-date 1990-05-15
  insight-engine report "Are we a good match?" --birth-date 1990-05-15 --partner-birth-date 1988-11-02 --pdf match.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())
		ctx := cmd.Context()

		q := types.Question{
			Text:    strings.Join(args, " "),
			Details: detailsFromFlags(cmd, ""),
			Partner: detailsFromFlags(cmd, "partner-"),
		}
		if path, _ := cmd.Flags().GetString("image"); path != "" {
			img, err := upload.New(cfg.Upload).ReadFile(path)
			if err != nil {
				return fmt.Errorf("palm image: %w", err)
			}
			q.Image = img
		}

		gen, err := generate.New(ctx, cfg.AI, logger)
		if err != nil {
			return fmt.Errorf("generation backend: %w", err)
		}

		var opts []pipeline.Option
		pdfPath, _ := cmd.Flags().GetString("pdf")
		if pdfPath != "" {
			pdfCfg := cfg.PDF
			pdfCfg.Enabled = true
			printer := pdf.NewRodPrinter(pdfCfg, logger)
			defer func() {
				if err := printer.Close(); err != nil {
					logger.Warn("closing browser", zap.Error(err))
				}
			}()
			opts = append(opts, pipeline.WithPrinter(printer))
		}

		p := pipeline.New(gen, logger, opts...)
		rep, err := p.Run(ctx, q)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		htmlPath, _ := cmd.Flags().GetString("html")
		if format == "text" || htmlPath != "" || pdfPath != "" {
			out, err := p.Render(ctx, rep)
			if err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, []byte(out.HTML), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", htmlPath, err)
				}
				logger.Info("wrote html", zap.String("path", htmlPath))
			}
			if pdfPath != "" {
				if len(out.PDF) == 0 {
					return errors.New("pdf printing failed; run with --verbose for details")
				}
				if err := os.WriteFile(pdfPath, out.PDF, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", pdfPath, err)
				}
				logger.Info("wrote pdf", zap.String("path", pdfPath))
			}
			if format == "text" {
				_, err := io.WriteString(cmd.OutOrStdout(), out.Text)
				return err
			}
		}
		return writeValue(cmd.OutOrStdout(), format, rep)
	},
}

// detailsFromFlags collects one person's details from flags sharing prefix.
// It returns nil when no flag is set.
func detailsFromFlags(cmd *cobra.Command, prefix string) *types.PersonalDetails {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(prefix + name)
		return strings.TrimSpace(v)
	}
	d := types.PersonalDetails{
		FullName:     get("name"),
		BirthDate:    get("birth-date"),
		BirthTime:    get("birth-time"),
		BirthCity:    get("birth-city"),
		BirthState:   get("birth-state"),
		BirthCountry: get("birth-country"),
	}
	if d.IsEmpty() {
		return nil
	}
	return &d
}

// writeValue encodes v as YAML (the default) or indented JSON.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}

func addDetailFlags(cmd *cobra.Command, prefix, who string) {
	cmd.Flags().String(prefix+"name", "", who+" full name")
	cmd.Flags().String(prefix+"birth-date", "", who+" birth date (YYYY-MM-DD)")
	cmd.Flags().String(prefix+"birth-time", "", who+" birth time (HH:MM or Unknown)")
	cmd.Flags().String(prefix+"birth-city", "", who+" birth city")
	cmd.Flags().String(prefix+"birth-state", "", who+" birth state or region")
	cmd.Flags().String(prefix+"birth-country", "", who+" birth country")
}

func init() {
	addDetailFlags(reportCmd, "", "requester")
	addDetailFlags(reportCmd, "partner-", "partner")
	reportCmd.Flags().String("image", "", "path to a palm photo")
	reportCmd.Flags().String("format", "yaml", "output format: yaml, json or text")
	reportCmd.Flags().String("html", "", "also write the email HTML to this path")
	reportCmd.Flags().String("pdf", "", "also print the report to this PDF path")

	rootCmd.AddCommand(reportCmd)
}
