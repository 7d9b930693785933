package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentorgraph/mentorgraph/internal/seed"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate a running server with persona sessions",
		Long: `seed posts a corpus of synthetic mentor and mentee sessions to a
running mentorgraph server. Each round posts every persona once under a
round-suffixed user id, so 5 rounds yields 50 distinct users.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")
			rounds, _ := cmd.Flags().GetInt("rounds")
			if rounds <= 0 {
				return fmt.Errorf("rounds must be positive, got %d", rounds)
			}

			total, err := seed.New(baseURL).Run(cmd.Context(), rounds)
			if err != nil {
				return fmt.Errorf("seeded %d sessions before failing: %w", total, err)
			}
			fmt.Printf("seeded %d persona sessions\n", total)
			return nil
		},
	}
	cmd.Flags().String("base-url", "http://localhost:8000", "Server base URL")
	cmd.Flags().Int("rounds", 5, "Variation rounds per persona")
	return cmd
}
