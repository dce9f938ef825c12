package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// statementsCmd dumps the session belief system's fact base.
var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Dump the current belief system's fact base",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(bs.Statements(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
