// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/insight-engine/internal/classify"
	"github.com/pdiddy/insight-engine/internal/generate"
)

var classifyCmd = &cobra.Command{
	Use:   "classify \"question\"",
	Short: "Print the personal/technical classification of a question",
	Long: `Classify asks the generation backend whether a question is personal or
technical. When the backend is unavailable or replies with something
unusable, the keyword fallback decides and the source reads "fallback".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())
		question := strings.Join(args, " ")

		offline, _ := cmd.Flags().GetBool("offline")
		if offline {
			format, _ := cmd.Flags().GetString("format")
			return writeValue(cmd.OutOrStdout(), format, classify.Fallback(question))
		}

		gen, err := generate.New(cmd.Context(), cfg.AI, logger)
		if err != nil {
			return fmt.Errorf("generation backend: %w", err)
		}
		c := classify.New(gen, logger).Classify(cmd.Context(), question)

		format, _ := cmd.Flags().GetString("format")
		return writeValue(cmd.OutOrStdout(), format, c)
	},
}

func init() {
	classifyCmd.Flags().Bool("offline", false, "use the keyword fallback only")
	classifyCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(classifyCmd)
}
