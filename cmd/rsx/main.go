package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/rsx/internal/config"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐─┐ ┬
  ├┬┘└─┐┌┴┬┘
  ┴└─└─┘┴ └─
`

// profile colours the CLI's own messages.
var profile = termenv.ANSI

// app holds the state shared by every command, filled in before any
// command runs.
type app struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rsx",
		Short: "Compile and render JSX-like templates",
		Long: `rsx compiles templates that mix HTML with embedded expressions
and renders them to HTML, or to Go code that builds the same tree.

  • Render templates with data from JSON or YAML
  • Check templates and report diagnostics
  • Generate Go functions from templates
  • Preview templates over HTTP and WebSocket
  • Publish rendered pages to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: rsx.json or rsx.yaml in the project root)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from config)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		renderCmd(a),
		checkCmd(a),
		genCmd(a),
		serveCmd(a),
		explainCmd(a),
		versionCmd(),
	)

	return rootCmd
}

// setup loads the configuration and builds the logger. A missing config
// file is not an error: defaults apply relative to the working directory.
func (a *app) setup(cmd *cobra.Command) error {
	if a.noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		profile = termenv.Ascii
	} else {
		profile = termenv.ANSI
	}
	if a.noColor {
		errors.DisableColors()
	} else {
		errors.DetectColors(os.Stderr)
	}

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		var re *errors.RsxError
		if a.configPath != "" || !errors.As(err, &re) || re.Code != "R120" {
			return err
		}
		a.cfg = config.New()
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	levelName := a.logLevel
	if levelName == "" {
		levelName = a.cfg.Log.Level
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return errors.New("R122").WithDetail("--log-level: " + err.Error())
	}
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
	return nil
}

// printError prints each diagnostic of a failed compile, or err itself.
func printError(err error) {
	var list *errors.List
	if errors.As(err, &list) {
		for _, d := range list.Items() {
			errors.PrintError(d)
		}
		return
	}
	errors.PrintError(err)
}

// printBanner prints the rsx ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

func colored(text, color string) string {
	return profile.String(text).Foreground(profile.Color(color)).String()
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colored("✓", "2"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", colored("⚠", "3"), fmt.Sprintf(format, args...))
}
