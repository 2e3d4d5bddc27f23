package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/embed"
	"github.com/utcpkb/kbforge/internal/query"
	"github.com/utcpkb/kbforge/internal/store"
	"github.com/utcpkb/kbforge/internal/vector"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		semantic   bool
		repo       string
		entityType string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search concepts, relationships, principles, and patterns by
case-insensitive substring match. With --semantic the query is embedded and
matched against the concept vector index instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s := store.New(cfg.Paths.KBDir)
			if err := s.Load(); err != nil {
				return err
			}
			svc := query.NewService(s)
			queryText := strings.Join(args, " ")

			if semantic {
				return runSemanticSearch(cmd, cfg.Paths.KBDir, svc, queryText, limit, jsonOutput,
					embed.Options{
						Provider:    cfg.Embeddings.Provider,
						Model:       cfg.Embeddings.Model,
						OllamaHost:  cfg.Embeddings.OllamaHost,
						BatchSize:   cfg.Embeddings.BatchSize,
						MaxFeatures: cfg.Embeddings.MaxFeatures,
					})
			}

			if repo != "" || entityType != "" {
				return runFilteredSearch(cmd, svc, repo, entityType, jsonOutput)
			}

			results := svc.Search(queryText, limit)
			if jsonOutput {
				return printJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Concepts (%d):\n", len(results.Concepts))
			for _, c := range results.Concepts {
				fmt.Fprintf(out, "  [%s] %s (%s: %s)\n", c.Type, c.Name, c.SourceRepo, c.SourceFile)
			}
			fmt.Fprintf(out, "Relationships (%d):\n", len(results.Relationships))
			for _, r := range results.Relationships {
				fmt.Fprintf(out, "  %s -[%s %.1f]-> %s\n", r.Source, r.Type, r.Strength, r.Target)
			}
			fmt.Fprintf(out, "Principles (%d):\n", len(results.Principles))
			for _, item := range results.Principles {
				fmt.Fprintf(out, "  %s: %s\n", item.Name, item.Description)
			}
			fmt.Fprintf(out, "Patterns (%d):\n", len(results.Patterns))
			for _, item := range results.Patterns {
				fmt.Fprintf(out, "  %s: %s\n", item.Name, item.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", query.DefaultSearchLimit, "Maximum results per collection")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&semantic, "semantic", false, "Use embedding similarity over the concept vector index")
	cmd.Flags().StringVar(&repo, "repo", "", "Filter by exact source repository")
	cmd.Flags().StringVar(&entityType, "type", "", "Filter by exact concept/relationship type")

	return cmd
}

func runSemanticSearch(cmd *cobra.Command, kbDir string, svc *query.Service, queryText string, limit int, jsonOutput bool, opts embed.Options) error {
	vecPath := filepath.Join(kbDir, "vectors", "concepts.vec")
	metaPath := filepath.Join(kbDir, "vectors", "concepts_metadata.json")
	idx, _, err := vector.Load(vecPath, metaPath)
	if err != nil {
		return fmt.Errorf("failed to load concept vectors (run optimize first): %w", err)
	}

	embedder, err := embed.NewEmbedder(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	svc.EnableSemantic(idx, embedder)
	hits, err := svc.SemanticSearch(cmd.Context(), queryText, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, hits)
	}
	out := cmd.OutOrStdout()
	for _, hit := range hits {
		fmt.Fprintf(out, "%.4f  [%s] %s (%s: %s)\n",
			hit.Similarity, hit.Concept.Type, hit.Concept.Name,
			hit.Concept.SourceRepo, hit.Concept.SourceFile)
	}
	return nil
}

func runFilteredSearch(cmd *cobra.Command, svc *query.Service, repo, entityType string, jsonOutput bool) error {
	opts := query.FilterOptions{SourceRepo: repo, Type: entityType}
	concepts := svc.FilterConcepts(opts)
	relationships := svc.FilterRelationships(opts)

	if jsonOutput {
		return printJSON(cmd, map[string]any{
			"concepts":      concepts,
			"relationships": relationships,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Concepts (%d):\n", len(concepts))
	for _, c := range concepts {
		fmt.Fprintf(out, "  [%s] %s (%s: %s)\n", c.Type, c.Name, c.SourceRepo, c.SourceFile)
	}
	fmt.Fprintf(out, "Relationships (%d):\n", len(relationships))
	for _, r := range relationships {
		fmt.Fprintf(out, "  %s -[%s %.1f]-> %s\n", r.Source, r.Type, r.Strength, r.Target)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
