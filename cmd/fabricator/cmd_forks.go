package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// forkSummary is the CLI-facing projection of a belief.ForkRecord: enough
// to identify the child and the statement pair that forced the split,
// without recursing into the child's own nested fork history.
type forkSummary struct {
	ChildID   string `json:"child_id"`
	ChildName string `json:"child_name"`
	Strategy  string `json:"strategy"`
	Existing  string `json:"existing"`
	New       string `json:"new"`
}

// forksCmd lists the forks spawned from the session belief system.
var forksCmd = &cobra.Command{
	Use:   "forks",
	Short: "List forks spawned from the current belief system",
	RunE: func(cmd *cobra.Command, args []string) error {
		records := bs.Forks()
		summaries := make([]forkSummary, len(records))
		for i, r := range records {
			summaries[i] = forkSummary{
				ChildID:   r.Child.ID,
				ChildName: r.Child.Name,
				Strategy:  string(r.Strategy),
				Existing:  r.Existing.ContentKey(),
				New:       r.New.ContentKey(),
			}
		}
		out, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
