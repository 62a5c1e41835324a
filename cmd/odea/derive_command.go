package main

import (
	"github.com/spf13/cobra"
)

func newDeriveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "derive <file>...",
		Short: "Generate the default derivatives for tagged files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			for _, arg := range args {
				if err := s.wf.DeriveAll(cmd.Context(), arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
