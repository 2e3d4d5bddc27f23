package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/query"
	"github.com/utcpkb/kbforge/internal/store"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge-base statistics",
		Long:  `Display collection sizes plus the distinct repositories and entity types.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s := store.New(cfg.Paths.KBDir)
			if err := s.Load(); err != nil {
				return err
			}
			stats := query.NewService(s).Statistics()

			if jsonOutput {
				return printJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Concepts:       %d\n", stats.TotalConcepts)
			fmt.Fprintf(out, "Relationships:  %d\n", stats.TotalRelationships)
			fmt.Fprintf(out, "Repositories:   %d\n", stats.TotalRepositories)
			fmt.Fprintf(out, "Principles:     %d\n", stats.TotalPrinciples)
			fmt.Fprintf(out, "Patterns:       %d\n", stats.TotalPatterns)
			fmt.Fprintf(out, "Best practices: %d\n", stats.TotalBestPractices)
			fmt.Fprintf(out, "Insights:       %d\n", stats.TotalInsights)
			if len(stats.Repositories) > 0 {
				fmt.Fprintf(out, "Sources:        %s\n", strings.Join(stats.Repositories, ", "))
			}
			if len(stats.ConceptTypes) > 0 {
				fmt.Fprintf(out, "Concept types:  %s\n", strings.Join(stats.ConceptTypes, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
