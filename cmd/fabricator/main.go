// Package main implements fabricator, the CLI workbench: a session-scoped
// front end over a single belief system, backed by a sqlite-persisted
// simulation history.
//
// Commands are split across per-operation cmd_*.go files:
//
//	main.go            - entry point, rootCmd, global flags, session wiring
//	session.go          - JSON session snapshot load/save
//	cmd_add_rule.go     - add-rule
//	cmd_simulate.go     - simulate
//	cmd_state.go        - state
//	cmd_statements.go   - statements
//	cmd_rules.go        - rules
//	cmd_forks.go        - forks
//	cmd_reset.go        - reset
//	cmd_tension.go      - tension
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logic-fabricator/fabricator/internal/belief"
	"github.com/logic-fabricator/fabricator/internal/config"
	"github.com/logic-fabricator/fabricator/internal/fork"
	"github.com/logic-fabricator/fabricator/internal/logging"
	"github.com/logic-fabricator/fabricator/internal/persistence"
	"github.com/logic-fabricator/fabricator/internal/persistence/sqlite"
)

var (
	verbose      bool
	workspace    string
	strategyFlag string

	logger *zap.Logger
	cfg    *config.Config
	store  persistence.DatabaseAdapter
	bs     *belief.BeliefSystem

	sqliteAdapter *sqlite.Adapter
)

// rootCmd is the fabricator entry point.
var rootCmd = &cobra.Command{
	Use:   "fabricator",
	Short: "Logic Fabricator — a symbolic reasoning workbench",
	Long: `fabricator drives a single belief system through a session: add
rules, simulate inputs, and inspect the resulting facts, world state, and
forks.

Run without a subcommand to see session status.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewCLILogger(verbose)
		if err != nil {
			return err
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, aerr := filepath.Abs(ws); aerr == nil {
			ws = abs
		}
		workspace = ws

		cfg, err = config.Load(filepath.Join(workspace, "fabricator.yaml"))
		if err != nil {
			return err
		}

		dbPath := cfg.Persistence.SQLitePath
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(workspace, dbPath)
		}
		sqliteAdapter, err = sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open persistence store: %w", err)
		}
		store = sqliteAdapter

		bs, err = loadSession(sessionPath(workspace), cfg, store)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer func() {
			if logger != nil {
				_ = logger.Sync()
			}
			if sqliteAdapter != nil {
				_ = sqliteAdapter.Close()
			}
		}()
		if bs == nil {
			return nil
		}
		return saveSession(sessionPath(workspace), bs)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("belief system: %s (%s)\n", bs.Name, bs.ID)
		fmt.Printf("strategy: %s\n", bs.Strategy)
		fmt.Printf("rules: %d\n", len(bs.Rules()))
		fmt.Printf("statements: %d\n", len(bs.Statements()))
		fmt.Printf("forks: %d\n", len(bs.Forks()))
		return nil
	},
}

func sessionPath(ws string) string {
	return filepath.Join(ws, ".fabricator", "session.json")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&strategyFlag, "strategy", "", "Forking strategy for a newly-created session ("+
		string(fork.Coexist)+", "+string(fork.PrioritizeNew)+", "+string(fork.PrioritizeOld)+", "+string(fork.Preserve)+")")

	rootCmd.AddCommand(
		addRuleCmd,
		simulateCmd,
		stateCmd,
		statementsCmd,
		rulesCmd,
		forksCmd,
		resetCmd,
		tensionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
