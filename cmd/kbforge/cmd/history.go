package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/utcpkb/kbforge/internal/telemetry"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show pipeline run history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ts, err := telemetry.Open(filepath.Join(cfg.Paths.KBDir, "runs.db"))
			if err != nil {
				return err
			}
			defer func() { _ = ts.Close() }()

			runs, err := ts.RecentRuns(limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %-8s  %s  files=%d errors=%d concepts=%d relationships=%d\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Stage, r.RunID,
					r.FilesScanned, r.Errors, r.Concepts, r.Relationships)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
