package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// stateCmd dumps the session belief system's world state.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Dump the current belief system's world state",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(bs.World(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
