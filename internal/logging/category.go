// Package logging provides the engine's internal category tracing, so that
// internal/engine, internal/belief and the sqlite persistence adapter can
// log rule firings, contradictions, forks and writes without depending on
// zap — that stays confined to the CLI layer (see zap.go).
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Category tags the subsystem a trace line came from.
type Category string

const (
	CategoryEngine      Category = "engine"
	CategoryFork        Category = "fork"
	CategoryBelief      Category = "belief"
	CategoryPersistence Category = "persistence"
)

// Tracer wraps a standard logger scoped to one category. It is a no-op
// unless enabled, so production callers pay no formatting cost.
type Tracer struct {
	category Category
	enabled  bool
	logger   *log.Logger
}

var (
	mu       sync.RWMutex
	tracers  = make(map[Category]*Tracer)
	enabledG bool
)

// SetEnabled turns internal tracing on or off for every category. Disabled
// by default; the CLI enables it under --verbose.
func SetEnabled(v bool) {
	mu.Lock()
	defer mu.Unlock()
	enabledG = v
	for _, t := range tracers {
		t.enabled = v
	}
}

// Get returns (creating if necessary) the tracer for category.
func Get(category Category) *Tracer {
	mu.Lock()
	defer mu.Unlock()
	if t, ok := tracers[category]; ok {
		return t
	}
	t := &Tracer{
		category: category,
		enabled:  enabledG,
		logger:   log.New(os.Stderr, fmt.Sprintf("[%s] ", category), log.LstdFlags),
	}
	tracers[category] = t
	return t
}

// Trace logs a formatted message if tracing is enabled for this category.
func (t *Tracer) Trace(format string, args ...interface{}) {
	if t == nil || !t.enabled {
		return
	}
	t.logger.Printf(format, args...)
}
