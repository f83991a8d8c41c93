package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pthm/capsule/lib/dom"
	"github.com/spf13/cobra"
)

const renderDesc = `
Mount the manifest's components on an HTML page and write the result.
Mounted elements carry their tags, subscriber classes, initialized
markers and content.
`

func newRenderCmd(out, errOut io.Writer, flags *globalFlags) *cobra.Command {
	var (
		output  string
		publish []string
	)

	cmd := &cobra.Command{
		Use:   "render [page]",
		Short: "Mount components and print the resulting page",
		Long:  renderDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, reg, _, err := mountPage(args[0], flags, errOut)
			if err != nil {
				return err
			}
			for _, typ := range publish {
				if err := reg.Publish(typ, nil); err != nil {
					return err
				}
			}

			if output == "" {
				return doc.Render(out)
			}
			return writePage(output, doc)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "write the page to a file instead of stdout")
	f.StringSliceVar(&publish, "publish", nil, "publish these event types after mounting")
	return cmd
}

// writePage renders doc into the file at path, including the close error.
func writePage(path string, doc *dom.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
