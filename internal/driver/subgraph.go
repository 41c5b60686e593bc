package driver

import (
	"jvmcpg/internal/schema"

	"github.com/google/uuid"
)

// Subgraph is a transient, read-only view over a selection of nodes and
// the edges whose endpoints are both in that selection (spec §4.3). It is
// the return type of every bulk-retrieval Driver operation regardless of
// back-end, so callers never observe storage details.
type Subgraph struct {
	// RequestID identifies this retrieval for tracing across a remote
	// driver hop; it has no bearing on graph identity.
	RequestID string
	Nodes     []*Node
	Edges     []*Edge
}

// NewSubgraph returns an empty view stamped with a fresh request id, for
// drivers to populate before returning it to a caller.
func NewSubgraph() *Subgraph {
	return &Subgraph{RequestID: uuid.NewString()}
}

// NodeByID returns the node with the given id, or nil.
func (s *Subgraph) NodeByID(id int64) *Node {
	for _, n := range s.Nodes {
		if n.ID() == id {
			return n
		}
	}
	return nil
}

// NodesOfKind returns every node in the view with the given kind.
func (s *Subgraph) NodesOfKind(kind schema.NodeKind) []*Node {
	var out []*Node
	for _, n := range s.Nodes {
		if n.Kind() == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfKind returns every edge in the view with the given label.
func (s *Subgraph) EdgesOfKind(label schema.EdgeKind) []*Edge {
	var out []*Edge
	for _, e := range s.Edges {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// Out returns every edge in the view whose source is srcID.
func (s *Subgraph) Out(srcID int64) []*Edge {
	var out []*Edge
	for _, e := range s.Edges {
		if e.Src.ID() == srcID {
			out = append(out, e)
		}
	}
	return out
}

// In returns every edge in the view whose target is dstID.
func (s *Subgraph) In(dstID int64) []*Edge {
	var out []*Edge
	for _, e := range s.Edges {
		if e.Dst.ID() == dstID {
			out = append(out, e)
		}
	}
	return out
}
