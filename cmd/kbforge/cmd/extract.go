package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/pipeline"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract raw facts from upstream repositories",
		Long: `Scan every configured upstream repository and persist one raw
extraction bundle per repository under raw-extractions/. Files that cannot
be read are recorded as errors and excluded from downstream stages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, nil)
			result, err := p.Extract(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Extracted %d repositories: %d files scanned, %d extractions, %d errors (run %s)\n",
				len(result.Repositories), result.FilesScanned, result.Extractions, result.Errors, result.RunID)
			if result.Errors > 0 {
				return fmt.Errorf("extraction completed with %d files skipped", result.Errors)
			}
			return nil
		},
	}
}
