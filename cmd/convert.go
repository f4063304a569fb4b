package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jira-mcp/internal/adf"
)

func convertCmd() *cobra.Command {
	var force, compact bool
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Print the ADF document Jira would receive for a Markdown text",
		Long: `Reads Markdown from file, or stdin when no file is given, and prints the
Atlassian Document Format JSON. Text that does not look like Markdown is
wrapped as a single plain paragraph unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "opening input")
				}
				defer f.Close()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return errors.Wrap(err, "reading input")
			}

			doc := adf.FromText(string(text))
			if force {
				doc = adf.FromMarkdown(string(text))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return errors.Wrap(enc.Encode(doc), "writing output")
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Convert even if the text does not look like Markdown")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print the JSON on one line")
	return cmd
}
