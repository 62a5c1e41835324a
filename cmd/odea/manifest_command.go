package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"odea/internal/catalog"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Regenerate the payload checksum manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			if err := s.wf.WriteManifest(); err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", catalog.ManifestName(cfg.Archive.ChecksumAlgorithm))
			return nil
		},
	}
}
