package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haystackd/haystackd/configs"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write example configuration files",
		Long: `Write config.txt and server-config.yaml templates into the target
directory. Existing files are left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files := map[string][]byte{
				"config.txt":         configs.MinimalExample,
				"server-config.yaml": configs.ExtendedExample,
			}
			for name, content := range files {
				path := filepath.Join(dir, name)
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, skipping\n", path)
					continue
				}
				if err := os.WriteFile(path, content, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Target directory")
	return cmd
}
