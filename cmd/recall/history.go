package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/recall"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := recall.CaptureFilter{Failed: c.Failed, Limit: c.Limit}
	if c.Tab != "" {
		id := recall.TabID(c.Tab)
		filter.TabID = &id
	}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	recs, err := deps.History.FindCaptures(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", recall.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No captures recorded. Use 'recall run' to start capturing.")
		return nil
	}

	for _, r := range recs {
		result := "ok"
		if !r.Succeeded() {
			result = r.Code
		}
		fmt.Fprintf(deps.Stdout, "%s  %-10s  tab %-6s  %6d bytes  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), result, r.TabID, r.Bytes, r.URL)
	}
	return nil
}
