package main

import (
	"fmt"

	"github.com/fwojciec/recall"
)

// Run executes the tabs command.
func (c *TabsCmd) Run(deps *Dependencies) error {
	state, err := deps.Control.Tabs(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", recall.ErrorMessage(err))
		return err
	}

	if len(state.Records) == 0 && len(state.Exclusions) == 0 {
		fmt.Fprintln(deps.Stdout, "No tabs captured yet.")
		return nil
	}

	for _, r := range state.Records {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", r.TabID, r.LastSubmittedURL)
	}
	for _, id := range state.Exclusions {
		fmt.Fprintf(deps.Stdout, "%s  (excluded)\n", id)
	}
	return nil
}

// Run executes the exclude command.
func (c *ExcludeCmd) Run(deps *Dependencies) error {
	id := recall.TabID(c.TabID)
	if err := deps.Control.ExcludeTab(deps.Ctx, id); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", recall.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Tab %s excluded from capture\n", id)
	return nil
}
