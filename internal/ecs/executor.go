package ecs

import (
	"log/slog"
	"time"
)

// System is one unit of per-tick work. In runs once per Executor.Run call
// and shares In (typically a *Store plus whatever else the tick needs —
// a *level.Level, the set of connected sessions) with every other system
// in the executor.
type System[In any] func(in In, s *Store) error

type namedSystem[In any] struct {
	name string
	fn   System[In]
}

// Executor runs a fixed, ordered list of systems against a shared value
// every tick. It stands in for the reference server's boxed-closure
// system list, minus the runtime type erasure Go generics don't need here.
type Executor[In any] struct {
	systems  []namedSystem[In]
	log      *slog.Logger
	profile  bool
}

// NewExecutor returns an empty Executor. Pass profile true to log each
// system's wall time at Debug level on every Run.
func NewExecutor[In any](log *slog.Logger, profile bool) *Executor[In] {
	return &Executor[In]{log: log, profile: profile}
}

// Add appends a named system to run, in the order systems are added.
func (e *Executor[In]) Add(name string, fn System[In]) *Executor[In] {
	e.systems = append(e.systems, namedSystem[In]{name: name, fn: fn})
	return e
}

// Run executes every registered system once, in order, against in and s.
// A system error is logged and does not stop the remaining systems from
// running — one misbehaving system should not stall the whole tick.
func (e *Executor[In]) Run(in In, s *Store) {
	for _, sys := range e.systems {
		start := time.Now()
		if err := sys.fn(in, s); err != nil {
			e.log.Error("system returned an error", "system", sys.name, "err", err)
		}
		if e.profile {
			e.log.Debug("system timing", "system", sys.name, "elapsed", time.Since(start))
		}
	}
}
