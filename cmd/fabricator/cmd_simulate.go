package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/logic-fabricator/fabricator/internal/belief"
	"github.com/logic-fabricator/fabricator/internal/ir"
	"github.com/logic-fabricator/fabricator/internal/model"
	"github.com/logic-fabricator/fabricator/internal/persistence"
)

var simulateFile string

// simulateCmd runs a batch of statements through the inference loop.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a batch of statement inputs against the current belief system",
	Long: `Reads a JSON array of {"input_type": "statement", "data": {...}} IR
envelopes from --file (or stdin if omitted) and runs them through the
belief system's fixed-point inference loop. If a statement-level
contradiction forces a fork, the session head moves to the belief system
the simulation actually completed in; the parent is left untouched and
recorded in the persistence store.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFile, "file", "f", "", "Path to a JSON array of statement IR envelopes (default: stdin)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	raw, err := readInput(simulateFile)
	if err != nil {
		return fmt.Errorf("read statement IR: %w", err)
	}

	var envelopes []json.RawMessage
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return fmt.Errorf("malformed statement batch (expected a JSON array): %w", err)
	}

	inputs := make([]model.Statement, 0, len(envelopes))
	for _, env := range envelopes {
		result, err := ir.Translate(env)
		if err != nil {
			return err
		}
		if result.Kind != "statement" {
			return fmt.Errorf("expected input_type \"statement\", got %q", result.Kind)
		}
		inputs = append(inputs, result.Statement)
	}

	if len(bs.Statements()) >= cfg.Engine.FactLimit {
		return fmt.Errorf("fact base holds %d statements, at or above the configured fact_limit (%d)", len(bs.Statements()), cfg.Engine.FactLimit)
	}

	before := bs
	result, err := bs.Simulate(inputs)
	if err != nil {
		return err
	}

	if result.Final != nil && result.Final != before {
		if err := persistForkChain(before, result.Final); err != nil {
			return fmt.Errorf("persist fork chain: %w", err)
		}
		bs = result.Final
	}

	rec := persistence.SimulationRecord{
		ID:             uuid.NewString(),
		BeliefSystemID: bs.ID,
		Timestamp:      time.Now(),
		Introduced:     result.Introduced,
		Derived:        result.Derived,
		AppliedRules:   persistence.FromAppliedRules(result.AppliedRules),
	}
	if err := store.RecordSimulation(rec); err != nil {
		return fmt.Errorf("persist simulation: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// persistForkChain walks the fork lineage from final back up to root
// (exclusive) and records every child the in-memory simulation created
// along the way, since Simulate itself never touches the persistence
// layer.
func persistForkChain(root, final *belief.BeliefSystem) error {
	var chain []*belief.BeliefSystem
	for b := final; b != nil && b != root; b = b.Parent {
		chain = append(chain, b)
	}
	now := time.Now()
	for i := len(chain) - 1; i >= 0; i-- {
		child := chain[i]
		if err := store.ForkBeliefSystem(child.Parent.ID, child.ID, child.Name, string(child.Strategy), now); err != nil {
			return err
		}
	}
	return nil
}
