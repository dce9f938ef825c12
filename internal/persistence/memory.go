package persistence

import (
	"fmt"
	"sync"
	"time"
)

type beliefSystemRow struct {
	ID        string
	Name      string
	Strategy  string
	CreatedAt time.Time
	ParentID  string
}

// InMemory is a DatabaseAdapter backed by plain maps, used in tests. The
// CLI always opens the sqlite adapter.
type InMemory struct {
	mu          sync.Mutex
	beliefs     map[string]beliefSystemRow
	rules       map[string]map[string]bool // belief system id -> rule id -> present
	simulations map[string][]SimulationRecord
}

// NewInMemory builds an empty in-memory adapter.
func NewInMemory() *InMemory {
	return &InMemory{
		beliefs:     make(map[string]beliefSystemRow),
		rules:       make(map[string]map[string]bool),
		simulations: make(map[string][]SimulationRecord),
	}
}

// CreateBeliefSystem implements DatabaseAdapter.
func (m *InMemory) CreateBeliefSystem(id, name, strategy string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.beliefs[id]; exists {
		return fmt.Errorf("belief system %s already exists", id)
	}
	m.beliefs[id] = beliefSystemRow{ID: id, Name: name, Strategy: strategy, CreatedAt: createdAt}
	m.rules[id] = make(map[string]bool)
	return nil
}

// ForkBeliefSystem implements DatabaseAdapter.
func (m *InMemory) ForkBeliefSystem(parentID, childID, name, strategy string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.beliefs[parentID]; !exists {
		return fmt.Errorf("parent belief system %s not found", parentID)
	}
	m.beliefs[childID] = beliefSystemRow{ID: childID, Name: name, Strategy: strategy, CreatedAt: createdAt, ParentID: parentID}
	m.rules[childID] = make(map[string]bool)
	for ruleID := range m.rules[parentID] {
		m.rules[childID][ruleID] = true
	}
	return nil
}

// AddRule implements DatabaseAdapter. conditionJSON/consequencesJSON are
// accepted for interface conformance with the sqlite adapter; the
// in-memory adapter only needs rule identity to satisfy MERGE semantics.
func (m *InMemory) AddRule(beliefSystemID, ruleID string, conditionJSON, consequencesJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rules[beliefSystemID]
	if !ok {
		return fmt.Errorf("belief system %s not found", beliefSystemID)
	}
	set[ruleID] = true
	return nil
}

// RecordSimulation implements DatabaseAdapter.
func (m *InMemory) RecordSimulation(rec SimulationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.beliefs[rec.BeliefSystemID]; !exists {
		return fmt.Errorf("belief system %s not found", rec.BeliefSystemID)
	}
	m.simulations[rec.BeliefSystemID] = append(m.simulations[rec.BeliefSystemID], rec)
	return nil
}

// GetSimulationHistory implements DatabaseAdapter.
func (m *InMemory) GetSimulationHistory(beliefSystemID string) ([]SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SimulationRecord(nil), m.simulations[beliefSystemID]...), nil
}
