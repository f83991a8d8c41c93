package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var globalUsage = `Mount declared components onto a static HTML page.

Components are listed in a toml manifest:

  [[component]]
  name = "card"
  tags = ["shadow"]
  subscribe = ["cart:updated"]
  inner_html = "<h2>Card</h2>"

"scan" reports which elements each component mounts on.
"render" mounts them and prints the resulting page.
`

type globalFlags struct {
	manifest string
	debug    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "capsule",
		Short:         "Mount declared components onto HTML pages",
		Long:          globalUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.manifest, "manifest", "m", "capsule.toml", "path to the component manifest")
	pf.BoolVar(&flags.debug, "debug", false, "log every dispatched event")

	cmd.AddCommand(
		newScanCmd(out, errOut, flags),
		newRenderCmd(out, errOut, flags),
		newVersionCmd(out),
	)
	return cmd
}

// newLogger builds the console logger shared by every command.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "capsule").Logger()
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the capsule version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(out, "capsule version %s\n", version)
		},
	}
}
