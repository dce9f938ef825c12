package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logic-fabricator/fabricator/internal/belief"
	"github.com/logic-fabricator/fabricator/internal/fork"
)

// resetCmd discards the session's root belief system and starts a new one.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the session and start a fresh root belief system",
	RunE: func(cmd *cobra.Command, args []string) error {
		strategyTag := cfg.Engine.DefaultStrategy
		if strategyFlag != "" {
			strategyTag = strategyFlag
		}
		strategy, err := fork.Parse(strategyTag)
		if err != nil {
			return err
		}
		fresh, err := belief.New("root", strategy)
		if err != nil {
			return err
		}
		if err := store.CreateBeliefSystem(fresh.ID, fresh.Name, string(fresh.Strategy), time.Now()); err != nil {
			return err
		}
		if err := os.Remove(sessionPath(workspace)); err != nil && !os.IsNotExist(err) {
			return err
		}
		bs = fresh
		fmt.Printf("new belief system: %s (%s)\n", bs.Name, bs.ID)
		return nil
	},
}
