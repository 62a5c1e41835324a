package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update <file>...",
		Short: "Tag files and refresh their file and item metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			for _, arg := range args {
				f, err := s.wf.Update(cmd.Context(), arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (item %s)\n", f.Filename, f.Identifier)
			}
			return nil
		},
	}
}

func newUpdateFileCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update-file <file>...",
		Short: "Tag files and refresh their file metadata only",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			for _, arg := range args {
				f, err := s.wf.UpdateFile(cmd.Context(), arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", f.Filename)
			}
			return nil
		},
	}
}
