package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/pkg/rsx"
)

func checkCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Report template diagnostics",
		Long: `Parse and compile templates and report every diagnostic without
rendering. Directories are searched for .rsx files.

Formats:
  text     Full messages with source context (default)
  compact  One line per diagnostic, file:line:col: severity code: message
  json     One JSON object per line

The command fails if any template has an error. Warnings alone pass.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var emit func(*errors.RsxError)
			w := cmd.OutOrStdout()
			switch format {
			case "text":
				emit = func(e *errors.RsxError) { errors.Fprint(w, e) }
			case "compact":
				emit = func(e *errors.RsxError) { fmt.Fprintln(w, e.FormatCompact()) }
			case "json":
				emit = func(e *errors.RsxError) { fmt.Fprintln(w, e.FormatJSON()) }
			default:
				return fmt.Errorf("unknown format %q: want text, compact or json", format)
			}

			files, err := templateFiles(args)
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			failed, warnings := 0, 0
			for _, file := range files {
				src, err := os.ReadFile(file)
				if err != nil {
					return errors.New("R140").WithDetail(file + " could not be read.").Wrap(err)
				}
				diags := rsx.Check(file, src, rsx.WithRegistry(reg))
				for _, d := range diags.Items() {
					emit(d)
				}
				warnings += len(diags.Warnings())
				if diags.HasErrors() {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d templates have errors", failed, len(files))
			}
			if format == "text" {
				if warnings > 0 {
					warn(cmd.ErrOrStderr(), "%d templates checked, %d warnings", len(files), warnings)
				} else {
					success(cmd.ErrOrStderr(), "%d templates checked", len(files))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, compact or json")

	return cmd
}
