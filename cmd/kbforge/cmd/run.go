package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: extract, process, optimize",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, nil)
			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pipeline complete (run %s), knowledge base at %s\n",
				p.RunID(), p.KBDir())
			if result.Extract.Errors > 0 {
				return fmt.Errorf("pipeline completed with %d files skipped during extraction", result.Extract.Errors)
			}
			return nil
		},
	}
}
