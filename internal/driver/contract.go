package driver

import (
	"context"

	"jvmcpg/internal/schema"
)

// Edge is one persisted (or about-to-be-persisted) directed, labelled
// edge between two nodes.
type Edge struct {
	Src        *Node
	Dst        *Node
	Label      schema.EdgeKind
	Properties map[string]any
}

// Driver is the abstract boundary every graph store back-end implements
// (spec §4.2). Every operation is synchronous; failures are explicit.
// No back-end is required to provide concurrent-writer safety — the
// extractor is single-writer (spec §5) — but every back-end must treat
// every call as potentially blocking, which is why each method takes a
// context.Context.
type Driver interface {
	// AddVertex persists node, assigning its id on first insert. Calling
	// AddVertex twice with a builder that already has an id is a no-op
	// beyond re-checking existence (idempotent by equality of all
	// non-id properties, spec §8 property 6).
	AddVertex(ctx context.Context, n *Node) error

	// Exists reports whether n is already persisted, matched by id. A
	// node with no id assigned is reported as not persisted.
	Exists(ctx context.Context, n *Node) (bool, error)

	// ExistsEdge reports whether an edge with this exact (src, dst,
	// label) triple already exists.
	ExistsEdge(ctx context.Context, src, dst *Node, label schema.EdgeKind) (bool, error)

	// AddEdge persists an edge, auto-inserting either endpoint that is
	// not yet persisted. Returns a *cpgerr.SchemaViolation if the triple
	// is not schema.IsAllowed. Idempotent (spec §8 property 7).
	AddEdge(ctx context.Context, src, dst *Node, label schema.EdgeKind, properties map[string]any) error

	// DeleteVertex removes a single node and every edge touching it.
	// Idempotent: no error if the node is already absent.
	DeleteVertex(ctx context.Context, n *Node) error

	// DeleteMethod removes the method's full AST/CFG closure (every node
	// reachable from its METHOD node via AST) but preserves inbound CALL
	// edges, which are left dangling until the method is re-created
	// (spec §3 "Call-graph stability").
	DeleteMethod(ctx context.Context, fullName, signature string) error

	// GetMethod returns the method head and, when includeBody is true,
	// its transitive AST/CFG/REF/ARGUMENT/BINDS closure.
	GetMethod(ctx context.Context, fullName, signature string, includeBody bool) (*Subgraph, error)

	// GetProgramStructure returns the subgraph of FILE and
	// NAMESPACE_BLOCK nodes connected via AST edges.
	GetProgramStructure(ctx context.Context) (*Subgraph, error)

	// GetNeighbours returns the one-hop in- and out-neighbourhood of n,
	// including n itself.
	GetNeighbours(ctx context.Context, n *Node) (*Subgraph, error)

	// GetWholeGraph returns the full store.
	GetWholeGraph(ctx context.Context) (*Subgraph, error)

	// GetVertexIDs returns every id in [lo, hi].
	GetVertexIDs(ctx context.Context, lo, hi int64) ([]int64, error)

	// Clear empties the store.
	Clear(ctx context.Context) error
}

// Transactional is an optional capability a Driver may implement to batch
// a run of writes (e.g. one method's worth of nodes and edges) into a
// single atomic unit for efficiency. Callers begin and commit explicitly;
// the extractor pipeline does not call these methods, so its writes are
// never batched. Drivers that don't implement it (e.g. the in-memory
// reference driver) need no batching, since every one of their
// operations is already atomic with respect to its own effect (spec
// §4.2 "Guarantees").
type Transactional interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
