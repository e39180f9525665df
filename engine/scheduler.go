package engine

import (
	"context"
	"sync"
	"time"

	"laddercore/configdoc"
	"laddercore/elements"
	"laddercore/store"
	"laddercore/x/timex"

	"github.com/sirupsen/logrus"
)

// ScanTail is the cooperative sleep at the end of every scan iteration
// (§4.C: "~10 ms sleep at the tail of every iteration").
const ScanTail = 10 * time.Millisecond

// SpawnPace is the pause between spawning successive wire tasks during a
// bulk rebuild, to avoid starving other goroutines while a large program
// comes up (§4.D.f: "~200 ms").
const SpawnPace = 200 * time.Millisecond

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine owns the live set of wire scan tasks and the engine-private
// edge/timer tables for the currently active program generation. A new
// Engine's tables start empty; Rebuild always installs a fresh Tables,
// discarding the previous generation's edge/timer state wholesale
// (§3.4: "discarded on apply").
type Engine struct {
	store *store.Store
	log   logrus.FieldLogger

	mu     sync.Mutex
	tasks  []*task
	tables *elements.Tables
}

// New constructs an Engine with no wires running.
func New(s *store.Store, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{store: s, log: log, tables: elements.NewTables(log)}
}

// Teardown cancels and joins every running wire task (§4.D.c: "join/cancel
// and free their per-task node copies" — the node copies are simply
// dropped with the task's goroutine since each owns an independent
// deep-cloned wire).
func (e *Engine) Teardown() {
	e.mu.Lock()
	tasks := e.tasks
	e.tasks = nil
	e.mu.Unlock()

	for _, tk := range tasks {
		tk.cancel()
	}
	for _, tk := range tasks {
		<-tk.done
	}
}

// Rebuild tears down the current program (if any), resets the
// engine-private state tables, and spawns one scan task per wire, each
// over its own deep-cloned copy, pacing spawns by SpawnPace (§4.D.d-f).
// If ctx is cancelled mid-rebuild the remaining wires are not spawned.
func (e *Engine) Rebuild(ctx context.Context, wires []configdoc.Wire) {
	e.Teardown()

	e.mu.Lock()
	e.tables = elements.NewTables(e.log)
	tables := e.tables
	e.mu.Unlock()

	var spawned []*task
	for i, w := range wires {
		select {
		case <-ctx.Done():
			e.log.WithField("spawned", len(spawned)).WithField("total", len(wires)).
				Warn("rebuild aborted mid-spawn")
			e.mu.Lock()
			e.tasks = spawned
			e.mu.Unlock()
			return
		default:
		}

		clone := cloneWire(w)
		tk := e.spawn(clone, tables)
		spawned = append(spawned, tk)

		if i != len(wires)-1 {
			time.Sleep(SpawnPace)
		}
	}

	e.mu.Lock()
	e.tasks = spawned
	e.mu.Unlock()
}

func (e *Engine) spawn(w configdoc.Wire, tables *elements.Tables) *task {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(ScanTail)
		defer ticker.Stop()
		for {
			scanWire(e.store, tables, w, e.log, nowUs())
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return &task{cancel: cancel, done: done}
}

// nowUs is the monotonic microsecond clock the timer elements key off
// of (§5); time.Now() is monotonic on every platform Go targets here.
func nowUs() uint64 {
	return timex.NowUs()
}

// cloneWire deep-copies a wire's node tree so a spawned task owns an
// independent copy, immune to any later mutation of the document that
// produced it (§4.D.f: "the task owns its own copy").
func cloneWire(w configdoc.Wire) configdoc.Wire {
	return configdoc.Wire{Nodes: cloneNodes(w.Nodes)}
}

func cloneNodes(nodes []configdoc.Node) []configdoc.Node {
	if nodes == nil {
		return nil
	}
	out := make([]configdoc.Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n configdoc.Node) configdoc.Node {
	switch v := n.(type) {
	case configdoc.LadderElement:
		args := make([]string, len(v.Args))
		copy(args, v.Args)
		return configdoc.LadderElement{ElementType: v.ElementType, Args: args}
	case configdoc.Branch:
		return configdoc.Branch{Left: cloneNodes(v.Left), Right: cloneNodes(v.Right)}
	default:
		return n
	}
}
