package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/blobcam/rimage/tifftags"
	"go.viam.com/blobcam/vision/blob"
)

func dumpAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("dump needs at least one JPEG")
	}
	for _, path := range c.Args().Slice() {
		jpg, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return err
		}
		header, err := tifftags.Parse(jpg)
		if err != nil {
			return errors.Wrapf(err, "%s", path)
		}
		boxes := blob.BoxesFromCoords(header.Coords)
		fmt.Fprintf(c.App.Writer, "%s: %dx%d, %d boxes\n", path, header.Width, header.Height, len(boxes))
		if len(boxes) == 0 {
			continue
		}
		t := table.NewWriter()
		t.AppendHeader(table.Row{"#", "Min X", "Min Y", "Max X", "Max Y"})
		for i, b := range boxes {
			t.AppendRow(table.Row{i, b.MinX, b.MinY, b.MaxX, b.MaxY})
		}
		fmt.Fprintln(c.App.Writer, t.Render())
	}
	return nil
}
