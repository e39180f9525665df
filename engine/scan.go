// Package engine is the wire scheduler (§4.C): it turns a program's
// wires into independent scan tasks, runs the series-AND/Branch-OR scan
// algorithm against the element library, and owns the teardown/rebuild
// sequence a config apply drives.
package engine

import (
	"laddercore/configdoc"
	"laddercore/elements"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// scanWire runs one pass of wire's node list against s, returning
// nothing — the wire's own final condition is not observable from the
// outside, only its side effects are (§4.C: a top-level wire has no
// trailing consumer other than its own sink).
func scanWire(s *store.Store, t *elements.Tables, w configdoc.Wire, log logrus.FieldLogger, now uint64) {
	scanNodes(s, t, w.Nodes, log, now)
}

// scanNodes implements the per-node-list scan algorithm (§4.C): pull a
// trailing sink coil out of the series-AND chain, fold the remaining
// nodes left to right, then invoke the sink (if any) with the final
// condition. It returns the final running condition, which Branch uses
// to OR its two children together.
func scanNodes(s *store.Store, t *elements.Tables, nodes []configdoc.Node, log logrus.FieldLogger, now uint64) bool {
	cond := true

	list := nodes
	var sink *configdoc.LadderElement
	if n := len(list); n > 0 {
		if le, ok := list[n-1].(configdoc.LadderElement); ok && configdoc.IsSink(le.ElementType) {
			sink = &le
			list = list[:n-1]
		}
	}

	for _, node := range list {
		cond = processNode(s, t, node, cond, log, now)
	}

	if sink != nil {
		if fn, _, found := elements.Lookup(sink.ElementType); found {
			fn(s, t, sink.Args, cond, now)
		} else {
			elements.WarnUnknown(log, sink.ElementType)
		}
	}

	return cond
}

// processNode dispatches a single node and folds its contribution into
// cond per §4.C's category rules.
func processNode(s *store.Store, t *elements.Tables, node configdoc.Node, cond bool, log logrus.FieldLogger, now uint64) bool {
	switch n := node.(type) {
	case configdoc.LadderElement:
		fn, cat, found := elements.Lookup(n.ElementType)
		if !found {
			elements.WarnUnknown(log, n.ElementType)
			return cond
		}
		result := fn(s, t, n.Args, cond, now)
		switch cat {
		case elements.CategoryCondition:
			return cond && result
		case elements.CategoryReplace:
			return result
		default: // CategoryAction, CategorySink (a sink mid-series is non-conformant; it still runs but leaves cond unchanged)
			return cond
		}

	case configdoc.Branch:
		for _, side := range [][]configdoc.Node{n.Left, n.Right} {
			if k := len(side); k > 0 {
				if le, ok := side[k-1].(configdoc.LadderElement); ok && configdoc.IsSink(le.ElementType) {
					log.WithField("element_type", le.ElementType).Warn("branch sub-rung ends in a coil")
				}
			}
		}
		left := scanNodes(s, t, n.Left, log, now)
		right := scanNodes(s, t, n.Right, log, now)
		return cond && (left || right)

	default:
		return cond
	}
}
