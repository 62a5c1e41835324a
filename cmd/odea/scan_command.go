package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Rebuild the scan index from the data tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			count, err := s.wf.RebuildIndex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d payload files\n", count)
			return nil
		},
	}
}
