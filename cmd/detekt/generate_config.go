package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"detekt/internal/config"
)

func newGenerateConfigCmd(stdout io.Writer) *cobra.Command {
	var (
		format string
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Write the default configuration",
		Long: `Write the bundled default configuration, to stdout or to a file.

Examples:
  detekt generate-config > detekt.yml
  detekt generate-config --format toml --output config/detekt.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := config.RenderDefault(f)
			if err != nil {
				return fmt.Errorf("failed to render default configuration: %w", err)
			}
			if output == "" {
				_, err := stdout.Write(data)
				return err
			}
			return writeConfig(output, data, force, stdout)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, toml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func writeConfig(path string, data []byte, force bool, stdout io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	fmt.Fprintf(stdout, "Default configuration written to %s\n", path)
	return nil
}
