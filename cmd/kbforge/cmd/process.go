package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Rebuild the knowledge graph from raw extractions",
		Long: `Read the persisted raw extraction bundles and rebuild the concept
and relationship collections. The previous collections are replaced, not
merged; repository records accumulate as run history.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, nil)
			result, err := p.Process(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Rebuilt knowledge graph from %d repositories: %d concepts, %d relationships\n",
				result.Repositories, result.Concepts, result.Relationships)
			return nil
		},
	}
}
