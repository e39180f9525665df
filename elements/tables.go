// Package elements implements the ladder-logic operator library (§4.B):
// contacts, compares, coils, math, counters, timers, and reset. Every
// operator is a plain function over variable names; it closes over the
// variable store and the two engine-private state tables defined here.
package elements

import (
	"laddercore/errcode"

	"github.com/sirupsen/logrus"
)

// Edge-state and timer-runtime table caps (§3.4).
const (
	MaxEdges  = 64
	MaxTimers = 32
)

type edgeState struct{ prev bool }

type timerRuntime struct {
	startUs uint64
	running bool
}

// Tables holds the two engine-private tables scoped to a single wire
// program: edge state for rising-edge-gated operators, and timer
// runtime for TON/TOF state machines. Both are preserved across scan
// iterations of a wire but are discarded wholesale on every config apply
// (§3.4) — callers get a fresh Tables per program generation, never a
// mutated survivor from the previous one.
type Tables struct {
	edges  map[string]*edgeState
	timers map[string]*timerRuntime
	log    logrus.FieldLogger
}

// NewTables allocates empty edge/timer tables.
func NewTables(log logrus.FieldLogger) *Tables {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tables{
		edges:  make(map[string]*edgeState, MaxEdges),
		timers: make(map[string]*timerRuntime, MaxTimers),
		log:    log,
	}
}

// risingEdge reports whether cond has just transitioned false->true for
// the variable keyed by name, registering a new edge slot on first sight.
// Once the table is at capacity, names are tracked on a best-effort basis:
// an unregistrable edge is reported as never-rising, since spuriously
// firing an edge-gated write is worse than missing one (§7: fail safe).
func (t *Tables) risingEdge(name string, cond bool) bool {
	e, ok := t.edges[name]
	if !ok {
		if len(t.edges) >= MaxEdges {
			t.log.WithError(errcode.New(errcode.EdgeTableFull, "elements.risingEdge", name, nil)).
				Warn("edge table full, dropping edge tracking for variable")
			return false
		}
		e = &edgeState{}
		t.edges[name] = e
	}
	fired := cond && !e.prev
	e.prev = cond
	return fired
}

// timerSlot returns the timer runtime for name, allocating one if room
// remains in the table.
func (t *Tables) timerSlot(name string) (*timerRuntime, bool) {
	r, ok := t.timers[name]
	if ok {
		return r, true
	}
	if len(t.timers) >= MaxTimers {
		t.log.WithError(errcode.New(errcode.TimerTableFull, "elements.timerSlot", name, nil)).
			Warn("timer table full, dropping timer state for variable")
		return nil, false
	}
	r = &timerRuntime{}
	t.timers[name] = r
	return r, true
}

// Clock supplies the monotonic microsecond reading timers key off of
// (§5: "a monotonic microsecond clock"). Nothing in this package takes a
// Clock: the timer elements receive the reading as their nowUs argument,
// which the engine fills from timex.NowUs and tests set directly.
type Clock func() uint64
