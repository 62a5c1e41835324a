package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"odea/internal/archive"
	"odea/internal/catalog"
	"odea/internal/probe"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Verify payload files against their recorded checksums",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			alg := cfg.Archive.ChecksumAlgorithm

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			for _, arg := range args {
				f, err := catalog.LoadFile(s.root, arg, s.reporter)
				if err != nil {
					return err
				}

				recorded := recordedDigest(f, alg)
				if recorded == "" {
					fmt.Fprintln(out, renderStatusLine(f.Filename, statusWarn, "no recorded "+alg+" digest", colorize))
					continue
				}

				digest, ok, err := probe.Checksum(archive.Join(s.root, f.Filename), alg)
				if err != nil {
					return err
				}
				switch {
				case !ok:
					failures++
					fmt.Fprintln(out, renderStatusLine(f.Filename, statusError, "file missing", colorize))
				case digest != recorded:
					failures++
					fmt.Fprintln(out, renderStatusLine(f.Filename, statusError, alg+" mismatch", colorize))
				default:
					fmt.Fprintln(out, renderStatusLine(f.Filename, statusOK, "", colorize))
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d files failed verification", failures, len(args))
			}
			return nil
		},
	}
}

func recordedDigest(f *catalog.File, alg string) string {
	if alg == "sha256" {
		return f.SHA256
	}
	return f.SHA512
}
