package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// rulesCmd lists the session belief system's rules.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the current belief system's rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(bs.Rules(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
