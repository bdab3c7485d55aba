package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/recall"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	query := strings.Join(c.Query, " ")
	res, err := deps.Control.Find(deps.Ctx, query)
	if err != nil {
		if recall.ErrorCode(err) == recall.EINVALID {
			fmt.Fprintln(deps.Stderr, "Please enter text to search")
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", recall.ErrorMessage(err))
		}
		if recall.ErrorCode(err) == recall.ETRANSPORT {
			fmt.Fprintln(deps.Stderr, "Hint: Start the agent with 'recall run'")
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Opened %s in tab %s\n", res.URL, res.TabID)
	switch {
	case res.Highlighted:
		fmt.Fprintf(deps.Stdout, "Highlighted: %q\n", res.Match.Text)
	case res.HighlightText != "":
		fmt.Fprintf(deps.Stdout, "Passage not found on page: %q\n", res.HighlightText)
	}
	return nil
}
