// Package driver defines the single abstraction every graph store back-end
// implements: existence checks, vertex/edge insert and delete, and the
// small set of structural bulk-retrieval queries spec.md §4.2 allows.
package driver

import "jvmcpg/internal/schema"

// unassigned is the tentative id every builder starts with; the driver
// assigns the real id on first AddVertex (spec §4.4).
const unassigned int64 = -1

// Node is a fluent builder for one CPG vertex. Callers construct one with
// NewNode, chain Set calls for whichever schema properties apply, and pass
// it to a Driver. The Driver rewrites n's id in place on first insert so
// later builders (CFG, PDG) can read it back via ID().
type Node struct {
	id    int64
	kind  schema.NodeKind
	props map[string]any
}

// NewNode creates a tentative node builder of the given kind. Every
// declared property for kind starts at its schema default (spec §6.3).
func NewNode(kind schema.NodeKind) *Node {
	n := &Node{id: unassigned, kind: kind, props: make(map[string]any)}
	for _, d := range schema.AllProperties(kind) {
		n.props[d.Name] = d.Default
	}
	return n
}

// Kind returns the node's label.
func (n *Node) Kind() schema.NodeKind { return n.kind }

// ID returns the node's id, or unassigned (-1) if it has never been
// persisted by a Driver.
func (n *Node) ID() int64 { return n.id }

// SetID is called by a Driver implementation to finalise a node's id on
// first insert. Callers outside a Driver implementation should not call
// this directly.
func (n *Node) SetID(id int64) { n.id = id }

// Set assigns a schema property, returning n for chaining. Properties not
// declared for n's kind are stored anyway (builders occasionally attach
// bookkeeping fields); schema validation only governs edges and the
// closed kind/edge vocabularies, per spec §4.1.
func (n *Node) Set(name string, value any) *Node {
	n.props[name] = value
	return n
}

// Get returns the raw value of a property, or nil if never set and not
// defaulted.
func (n *Node) Get(name string) any { return n.props[name] }

// String returns a property as a string, defaulting to schema.DefaultString
// if unset or of the wrong type.
func (n *Node) String(name string) string {
	if v, ok := n.props[name].(string); ok {
		return v
	}
	return schema.DefaultString
}

// Int returns a property as an int, defaulting to schema.DefaultInt if
// unset or of the wrong type.
func (n *Node) Int(name string) int {
	if v, ok := n.props[name].(int); ok {
		return v
	}
	return schema.DefaultInt
}

// Bool returns a property as a bool, defaulting to false if unset.
func (n *Node) Bool(name string) bool {
	v, _ := n.props[name].(bool)
	return v
}

// Properties returns a shallow copy of every set property, for drivers
// that need to serialise the full bag.
func (n *Node) Properties() map[string]any {
	out := make(map[string]any, len(n.props))
	for k, v := range n.props {
		out[k] = v
	}
	return out
}

// Order/SetOrder, ArgumentIndex/SetArgumentIndex, Line/Col and Code are
// convenience accessors for the properties every body node carries
// (spec §3).

func (n *Node) Order() int             { return n.Int("order") }
func (n *Node) SetOrder(v int) *Node   { return n.Set("order", v) }
func (n *Node) ArgumentIndex() int     { return n.Int("argumentIndex") }
func (n *Node) SetArgumentIndex(v int) *Node {
	return n.Set("argumentIndex", v)
}
func (n *Node) Line() int           { return n.Int("lineNumber") }
func (n *Node) SetLine(v int) *Node { return n.Set("lineNumber", v) }
func (n *Node) Col() int            { return n.Int("columnNumber") }
func (n *Node) SetCol(v int) *Node  { return n.Set("columnNumber", v) }
func (n *Node) Code() string        { return n.String("code") }
func (n *Node) SetCode(v string) *Node { return n.Set("code", v) }
