package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"odea/internal/catalog"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the catalog metadata for a payload file and its item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSession()
			if err != nil {
				return err
			}

			f, err := catalog.LoadFile(s.root, args[0], s.reporter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"field", "value"}, fileRows(f)))

			if f.Identifier == "" {
				fmt.Fprintln(out, "File is untagged; no item metadata")
				return nil
			}
			item, err := catalog.LoadItem(s.root, f.Identifier, s.reporter)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTable([]string{"field", "value"}, itemRows(item)))
			return nil
		},
	}
}

func fileRows(f *catalog.File) [][]string {
	size := ""
	if f.Size >= 0 {
		size = strconv.FormatInt(f.Size, 10)
	}
	rows := [][]string{
		{"filename", f.Filename},
		{"identifier", f.Identifier},
		{"format", f.Format},
		{"size", size},
		{"mtime", f.Mtime},
		{"sha256", shortDigest(f.SHA256)},
		{"sha512", shortDigest(f.SHA512)},
		{"dimensions", f.Dimensions},
		{"duration", f.Duration},
		{"thumb", f.Thumb},
		{"original_name", f.OriginalName},
	}
	return dropEmptyRows(rows)
}

func itemRows(item *catalog.Item) [][]string {
	rows := [][]string{
		{"title", item.Title},
		{"creator", strings.Join(item.Creator, "; ")},
		{"subject", strings.Join(item.Subject, "; ")},
		{"date", item.Date},
		{"description", item.Description},
		{"language", item.Language},
		{"rights", item.Rights},
		{"dcmi_type", item.DcmiType},
		{"note", strings.Join(item.Note, "; ")},
	}
	return dropEmptyRows(rows)
}

func dropEmptyRows(rows [][]string) [][]string {
	kept := rows[:0]
	for _, row := range rows {
		if row[1] != "" {
			kept = append(kept, row)
		}
	}
	return kept
}

func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16] + "..."
	}
	return digest
}
