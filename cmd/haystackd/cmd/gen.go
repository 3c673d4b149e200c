package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haystackd/haystackd/internal/corpus"
)

func newGenCmd() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "gen <path>",
		Short: "Generate a test corpus file",
		Long: `Generate a corpus file of random "test string N" lines for testing
and benchmarking.

Example:
  haystackd gen /tmp/corpus.txt --lines 1000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := corpus.Generate(args[0], lines); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %d lines to %s\n", lines, args[0])
			return err
		},
	}

	cmd.Flags().IntVar(&lines, "lines", 10000, "Number of lines to generate")
	return cmd
}
