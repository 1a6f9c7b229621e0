package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/vango-dev/rsx/internal/errors"
)

func explainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [CODE]",
		Short: "Describe a diagnostic code",
		Long: `Describe what a diagnostic code means. Without a code, list every
code rsx can report.

Examples:
  rsx explain R105
  rsx explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var md string
			if len(args) == 0 {
				md = codeTable()
			} else {
				var err error
				md, err = explainCode(args[0])
				if err != nil {
					return err
				}
			}

			out, err := renderMarkdown(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}

func renderMarkdown(md string) (string, error) {
	style := glamour.WithAutoStyle()
	if profile == termenv.Ascii {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func explainCode(code string) (string, error) {
	code = strings.ToUpper(code)
	t, ok := errors.GetTemplate(code)
	if !ok {
		return "", fmt.Errorf("unknown diagnostic code %q, run rsx explain for the list", code)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", code, headline(t.Message))
	fmt.Fprintf(&b, "*%s %s*\n\n", t.Category, t.Severity)
	if t.Detail != "" {
		b.WriteString(t.Detail + "\n\n")
	}
	if t.DocURL != "" {
		fmt.Fprintf(&b, "Learn more: %s\n", t.DocURL)
	}
	return b.String(), nil
}

func codeTable() string {
	var b strings.Builder
	b.WriteString("# Diagnostic codes\n\n| Code | Severity | Message |\n|---|---|---|\n")
	for _, code := range errors.GetAllCodes() {
		t, _ := errors.GetTemplate(code)
		fmt.Fprintf(&b, "| %s | %s | %s |\n", code, t.Severity, strings.ReplaceAll(headline(t.Message), "|", "\\|"))
	}
	return b.String()
}

// headline replaces format verbs in a message with placeholders.
func headline(msg string) string {
	r := strings.NewReplacer("%q", "…", "%s", "…", "%d", "…", "%v", "…")
	return r.Replace(msg)
}
