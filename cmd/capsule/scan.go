package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pthm/capsule"
	"github.com/pthm/capsule/lib/dom"
	"github.com/spf13/cobra"
)

const scanDesc = `
Parse an HTML page, declare the manifest's components and mount them.
Prints each component with the elements it mounted on, in declaration
order. Use "-" to read the page from stdin.
`

// mountPage parses the page at path and mounts the manifest's components
// on it.
func mountPage(path string, flags *globalFlags, errOut io.Writer) (*dom.Document, *capsule.Registry, mountLog, error) {
	m, err := loadManifest(flags.manifest)
	if err != nil {
		return nil, nil, nil, err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		defer f.Close()
		r = f
	}
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, nil, nil, err
	}

	log := newLogger(errOut, flags.debug)
	reg := capsule.NewRegistry(doc, capsule.WithLogger(log), capsule.WithDebug(flags.debug))
	mounted, err := m.declare(reg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	doc.Complete()

	log.Debug().Str("page", path).Int("components", len(m.Components)).Msg("mounted page")
	return doc, reg, mounted, nil
}

func newScanCmd(out, errOut io.Writer, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [page]",
		Short: "List the elements each component mounts on",
		Long:  scanDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, reg, mounted, err := mountPage(args[0], flags, errOut)
			if err != nil {
				return err
			}
			return writeScan(out, reg.Names(), mounted)
		},
	}
}

func writeScan(out io.Writer, names []string, mounted mountLog) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tMOUNTED\tELEMENTS")
	for _, name := range names {
		els := mounted[name]
		list := "-"
		if len(els) > 0 {
			list = fmt.Sprint(els)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(els), list)
	}
	return w.Flush()
}
