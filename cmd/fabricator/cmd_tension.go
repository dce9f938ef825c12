package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logic-fabricator/fabricator/internal/fork"
)

// tensionSummary is the CLI-facing projection of a fork.Tension.
type tensionSummary struct {
	RuleA   string            `json:"rule_a"`
	RuleB   string            `json:"rule_b"`
	Witness map[string]string `json:"witness"`
}

// tensionCmd exposes the proactive tension report: a pairwise scan of the
// current rules for consequences that could contradict under some binding,
// run without simulating anything.
var tensionCmd = &cobra.Command{
	Use:   "tension",
	Short: "Report rule pairs whose consequences could contradict under some binding",
	Long: `Scans the current belief system's rules pairwise for potential
contradictions in their consequence templates, using the same rules as
context for expansion up to the configured tension_hop_limit hops
(default 1). Detection is best-effort and does not
consult the current fact base: a reported tension has not necessarily
fired, and an un-reported pair may still clash once the fact base grows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := bs.Rules()
		tensions := fork.DetectTensions(rules, rules, cfg.Engine.TensionHopLimit)
		summaries := make([]tensionSummary, len(tensions))
		for i, t := range tensions {
			summaries[i] = tensionSummary{RuleA: t.RuleA.ID, RuleB: t.RuleB.ID, Witness: t.Witness}
		}
		out, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
