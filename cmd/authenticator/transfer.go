package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/svc/authenticator"
)

// formatFor picks the explicit format, else guesses from the file extension, else JSON.
func formatFor(explicit, path string) (registry.Format, error) {
	if explicit != "" {
		return registry.ParseFormat(explicit)
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if f, err := registry.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return registry.FormatJSON, nil
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every credential, secrets included, as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (retErr error) {
			f, err := formatFor(format, output)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return err
				}
				defer func() {
					if err := file.Close(); retErr == nil {
						retErr = err
					}
				}()
				w = file
			}
			return c.app.svc.Export(cmd.Context(), w, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, - or empty for stdout")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		format  string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge credentials from a JSON or YAML export; - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := formatFor(format, path)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return err
				}
				defer file.Close()
				r = file
			}

			mode := authenticator.ImportMerge
			if replace {
				mode = authenticator.ImportReplace
			}
			creds, err := c.app.svc.Import(cmd.Context(), r, f, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d credentials stored\n", len(creds))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default: from the file extension, else json)")
	cmd.Flags().BoolVar(&replace, "replace", false, "discard stored credentials instead of merging")
	return cmd
}
