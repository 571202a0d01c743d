package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/zoobzio/sprout"
)

// printResult writes the query text followed by one row per match.
func printResult(w io.Writer, query string, result *sprout.QueryResult) error {
	if _, err := fmt.Fprintf(w, "Query: %s\n", query); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tMETADATA")
	for _, m := range result.Matches {
		meta := "-"
		if m.Metadata != nil {
			b, err := json.Marshal(m.Metadata)
			if err != nil {
				return err
			}
			meta = string(b)
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%s\n", m.ID, m.Score, meta)
	}
	return tw.Flush()
}
