package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/logic-fabricator/fabricator/internal/belief"
	"github.com/logic-fabricator/fabricator/internal/config"
	"github.com/logic-fabricator/fabricator/internal/fork"
	"github.com/logic-fabricator/fabricator/internal/model"
	"github.com/logic-fabricator/fabricator/internal/persistence"
)

// sessionSnapshot is the on-disk shape of a belief system between CLI
// invocations: enough to rebuild it with belief.Restore without replaying
// any simulation.
type sessionSnapshot struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Strategy string                 `json:"strategy"`
	Rules    []model.Rule           `json:"rules"`
	Facts    []model.Statement      `json:"facts"`
	World    map[string]interface{} `json:"world"`
}

// loadSession reads the session snapshot at path, reconstructing its belief
// system via belief.Restore. A missing file starts a fresh root belief
// system under the configured (or flag-overridden) default strategy and
// records it with store.
func loadSession(path string, cfg *config.Config, store persistence.DatabaseAdapter) (*belief.BeliefSystem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newRootSession(cfg, store)
		}
		return nil, err
	}

	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	strategy, err := fork.Parse(snap.Strategy)
	if err != nil {
		return nil, err
	}
	return belief.Restore(snap.ID, snap.Name, strategy, snap.Rules, snap.Facts, snap.World)
}

func newRootSession(cfg *config.Config, store persistence.DatabaseAdapter) (*belief.BeliefSystem, error) {
	strategyTag := cfg.Engine.DefaultStrategy
	if strategyFlag != "" {
		strategyTag = strategyFlag
	}
	strategy, err := fork.Parse(strategyTag)
	if err != nil {
		return nil, err
	}
	bs, err := belief.New("root", strategy)
	if err != nil {
		return nil, err
	}
	if err := store.CreateBeliefSystem(bs.ID, bs.Name, string(bs.Strategy), time.Now()); err != nil {
		return nil, err
	}
	return bs, nil
}

// saveSession writes bs's rules, fact base, and world state to path as a
// JSON snapshot, creating the containing directory if necessary.
func saveSession(path string, bs *belief.BeliefSystem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	snap := sessionSnapshot{
		ID:       bs.ID,
		Name:     bs.Name,
		Strategy: string(bs.Strategy),
		Rules:    bs.Rules(),
		Facts:    bs.Statements(),
		World:    bs.World(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
