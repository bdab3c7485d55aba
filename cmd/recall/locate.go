package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/recall"
	"github.com/fwojciec/recall/goquery"
)

// Run executes the locate command.
func (c *LocateCmd) Run(deps *Dependencies) error {
	markup, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	m, err := goquery.Locate(string(markup), c.Fragment)
	if err != nil {
		if recall.ErrorCode(err) == recall.ENOMATCH {
			fmt.Fprintln(deps.Stdout, "No match.")
			return nil
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n", m.Path)
	fmt.Fprintf(deps.Stdout, "  node %d, offsets %d-%d\n", m.NodeIndex, m.StartOffset, m.EndOffset)
	fmt.Fprintf(deps.Stdout, "  %q\n", m.Text)
	return nil
}
