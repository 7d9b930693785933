package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mentorgraph",
		Short: "Mentorgraph - AI mentorship matching service",
		Long: `mentorgraph serves a mentorship matching API.

It grows a per-user profile graph from session transcripts, keeps an
append-only log of embedded profile snapshots, and ranks mentor
candidates for mentees with an epsilon-greedy policy.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (YAML)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newSeedCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mentorgraph version %s\n", version)
		},
	}
}
