package console

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nerrad567/epicure-publisher/internal/audit"
)

// PrintHistory writes one page of journal entries as an aligned table,
// newest first. now anchors the relative "when" column.
func PrintHistory(w io.Writer, res *audit.ListResult, now time.Time) error {
	if res == nil || len(res.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No commands recorded yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tRUN\tOUTCOME\tINPUT\tREASON") //nolint:errcheck // Checked on Flush
	for _, e := range res.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", //nolint:errcheck // Checked on Flush
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			e.RunID,
			e.Outcome,
			e.Input,
			e.Reason,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nShowing %d of %d entries\n", len(res.Entries), res.Total)
	return err
}
