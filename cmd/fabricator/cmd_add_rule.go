package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logic-fabricator/fabricator/internal/ir"
)

var addRuleFile string

// addRuleCmd adds a rule to the session's belief system.
var addRuleCmd = &cobra.Command{
	Use:   "add-rule",
	Short: "Add a rule to the current belief system from an IR rule envelope",
	Long: `Reads a top-level {"input_type": "rule", "data": {...}} IR envelope
from --file (or stdin if omitted) and adds the resulting rule(s) to the
session's belief system. A rule whose condition contains OR is split into
one rule per disjunct by mandatory disjunction elimination; every disjunct
is added.`,
	RunE: runAddRule,
}

func init() {
	addRuleCmd.Flags().StringVarP(&addRuleFile, "file", "f", "", "Path to an IR rule envelope (default: stdin)")
}

func runAddRule(cmd *cobra.Command, args []string) error {
	raw, err := readInput(addRuleFile)
	if err != nil {
		return fmt.Errorf("read rule IR: %w", err)
	}
	result, err := ir.Translate(raw)
	if err != nil {
		return err
	}
	if result.Kind != "rule" {
		return fmt.Errorf("expected input_type \"rule\", got %q", result.Kind)
	}

	added := 0
	for _, rule := range result.Rules {
		if err := bs.AddRule(rule); err != nil {
			logger.Warn("rule not added", zap.String("rule_id", rule.ID), zap.Error(err))
			continue
		}
		conditionJSON, err := json.Marshal(rule.Condition)
		if err != nil {
			return err
		}
		consequencesJSON, err := json.Marshal(rule.Consequences)
		if err != nil {
			return err
		}
		if err := store.AddRule(bs.ID, rule.ID, conditionJSON, consequencesJSON); err != nil {
			return fmt.Errorf("persist rule %s: %w", rule.ID, err)
		}
		added++
		fmt.Println(rule.ID)
	}
	if added == 0 {
		return fmt.Errorf("no rule was added (all disjuncts already present)")
	}
	return nil
}
