package engine

import (
	"testing"

	"laddercore/configdoc"
	"laddercore/elements"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

func newScanStore(t *testing.T, vars []configdoc.Variable) *store.Store {
	t.Helper()
	s := store.New(store.NopDriver{}, nil)
	if err := s.Load(vars); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// A series chain with a trailing sink coil: the coil is pulled out of
// the AND chain and invoked once with the chain's final condition.
func TestScanWireSeriesAndSinkCoil(t *testing.T) {
	s := newScanStore(t, []configdoc.Variable{
		{Name: "in1", Kind: configdoc.KindBoolean, BoolValue: true},
		{Name: "in2", Kind: configdoc.KindBoolean, BoolValue: true},
		{Name: "out", Kind: configdoc.KindBoolean},
	})
	s.WriteBool("in1", true)
	s.WriteBool("in2", true)

	wire := configdoc.Wire{Nodes: []configdoc.Node{
		configdoc.LadderElement{ElementType: "NCContact", Args: []string{"in1"}},
		configdoc.LadderElement{ElementType: "NCContact", Args: []string{"in2"}},
		configdoc.LadderElement{ElementType: "Coil", Args: []string{"out"}},
	}}

	tab := elements.NewTables(nil)
	scanWire(s, tab, wire, discardLogger(), 0)

	if !s.ReadBool("out") {
		t.Fatal("expected both NCContacts true (in1/in2 true) to drive the coil on")
	}

	s.WriteBool("in2", false)
	scanWire(s, tab, wire, discardLogger(), 0)
	if s.ReadBool("out") {
		t.Fatal("expected one false NCContact to break the AND chain and drop the coil")
	}
}

// A Branch ORs its two sub-rungs, and that OR is ANDed into the outer
// condition.
func TestScanWireBranchOr(t *testing.T) {
	s := newScanStore(t, []configdoc.Variable{
		{Name: "left", Kind: configdoc.KindBoolean},
		{Name: "right", Kind: configdoc.KindBoolean, BoolValue: true},
		{Name: "out", Kind: configdoc.KindBoolean},
	})
	s.WriteBool("right", true)

	wire := configdoc.Wire{Nodes: []configdoc.Node{
		configdoc.Branch{
			Left:  []configdoc.Node{configdoc.LadderElement{ElementType: "NCContact", Args: []string{"left"}}},
			Right: []configdoc.Node{configdoc.LadderElement{ElementType: "NCContact", Args: []string{"right"}}},
		},
		configdoc.LadderElement{ElementType: "Coil", Args: []string{"out"}},
	}}

	tab := elements.NewTables(nil)
	scanWire(s, tab, wire, discardLogger(), 0)

	if !s.ReadBool("out") {
		t.Fatal("expected the branch OR (right true) to drive the coil on")
	}
}

func TestCloneWireIsIndependentCopy(t *testing.T) {
	orig := configdoc.Wire{Nodes: []configdoc.Node{
		configdoc.LadderElement{ElementType: "Coil", Args: []string{"out"}},
	}}
	clone := cloneWire(orig)

	le := clone.Nodes[0].(configdoc.LadderElement)
	le.Args[0] = "mutated"

	origLE := orig.Nodes[0].(configdoc.LadderElement)
	if origLE.Args[0] != "out" {
		t.Fatal("mutating the clone's args leaked back into the original wire")
	}
}
