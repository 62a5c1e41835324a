package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <file>...",
		Short: "Publish the item pages for tagged files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			for _, arg := range args {
				rel, err := s.wf.Publish(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", rel)
			}
			return nil
		},
	}
}

func newIndexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Publish the collection page and index.html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}
			rel, err := s.wf.PublishIndex()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", rel)
			return nil
		},
	}
}
