package configdoc

// Wire is one ladder rung: an ordered list of nodes evaluated left to right.
type Wire struct {
	Nodes []Node
}

// Node is either a LadderElement leaf or a Branch of two parallel sub-rungs.
// It is a closed sum type (§3.3); implementations outside this package
// never appear on the wire.
type Node interface {
	nodeTag()
}

// LadderElement is a leaf node: an element-type name plus its argument
// list (variable names, in the order the element expects them).
type LadderElement struct {
	ElementType string
	Args        []string
}

func (LadderElement) nodeTag() {}

// Branch runs Left and Right as independent series chains starting from
// true; the outer condition ANDs in their OR. Either side may itself end
// in a trailing coil (§4.C); the scheduler warns but honors it.
type Branch struct {
	Left  []Node
	Right []Node
}

func (Branch) nodeTag() {}

// sinkElementTypes is the closed set of terminal ("coil") element types
// (§3.3): the last node in a series, if one of these, is pulled out of the
// AND chain and invoked once with the chain's final condition.
var sinkElementTypes = map[string]bool{
	"Coil":                true,
	"OneShotPositiveCoil": true,
	"SetCoil":             true,
	"ResetCoil":           true,
}

// IsSink reports whether elementType terminates a series chain as a coil.
func IsSink(elementType string) bool { return sinkElementTypes[elementType] }
