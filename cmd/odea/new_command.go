package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"odea/internal/workflow"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "new [dir]",
		Short: "Initialize an archive in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", dir, err)
			}

			if err := workflow.InitArchive(abs, cfg.Archive.Name, title); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized archive at %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Collection title for the new archive")
	return cmd
}
