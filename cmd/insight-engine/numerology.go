// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/numerology"
)

var numerologyCmd = &cobra.Command{
	Use:   "numerology BIRTH_DATE",
	Short: "Print the numerology profile computed from a birth date",
	Long: `Numerology computes the life path, personal year and personal month for
a birth date without calling the generation backend. The reference date
defaults to today.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := time.Now()
		if s, _ := cmd.Flags().GetString("at"); s != "" {
			t, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return fmt.Errorf("parsing --at: %w", err)
			}
			at = t
		}

		profile, ok := numerology.Compute(args[0], at)
		if !ok {
			return fmt.Errorf("birth date %q has no nonzero digit", args[0])
		}
		format, _ := cmd.Flags().GetString("format")
		return writeValue(cmd.OutOrStdout(), format, profile)
	},
}

func init() {
	numerologyCmd.Flags().String("at", "", "reference date (YYYY-MM-DD), default today")
	numerologyCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(numerologyCmd)
}
