package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/kb"
	"github.com/utcpkb/kbforge/internal/pipeline"
)

func newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Derive search indexes and wisdom from the knowledge graph",
		Long: `Rebuild the retrieval layers from the stored knowledge graph:
lexical inverted indexes, embedding vector indexes, and the four wisdom
collections (principles, patterns, best practices, insights).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, nil)
			result, err := p.Optimize(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lexical indexes: %d concept tokens, %d relationship tokens\n",
				result.ConceptTokens, result.RelationshipTokens)
			fmt.Fprintf(out, "Vector indexes: %d concepts, %d relationships, %d repositories, %d wisdom (%s)\n",
				result.ConceptVectors, result.RelationshipVectors,
				result.RepositoryVectors, result.WisdomVectors, result.EmbeddingModel)
			fmt.Fprintf(out, "Wisdom: %d principles, %d patterns, %d best practices, %d insights\n",
				result.Wisdom[kb.WisdomPrinciples], result.Wisdom[kb.WisdomPatterns],
				result.Wisdom[kb.WisdomBestPractices], result.Wisdom[kb.WisdomInsights])
			return nil
		},
	}
}
