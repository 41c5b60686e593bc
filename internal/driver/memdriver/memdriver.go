// Package memdriver implements the Driver contract with a plain
// adjacency-list map, serving as the correctness oracle for other
// back-ends (spec §4.3).
package memdriver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/schema"
)

type adjEntry struct {
	label schema.EdgeKind
	other int64
	props map[string]any
}

// Driver is the in-memory reference implementation of driver.Driver.
type Driver struct {
	mu     sync.RWMutex
	nextID int64

	nodes  map[int64]*driver.Node
	outAdj map[int64][]adjEntry
	inAdj  map[int64][]adjEntry
	byKind map[schema.NodeKind]map[int64]struct{}

	// Uniqueness indexes, spec §3 "File uniqueness".
	fileByName    map[string]int64
	nsByFullName  map[string]int64
	methodByKey   map[string]int64 // fullName + "\x00" + signature
}

// New creates an empty in-memory driver.
func New() *Driver {
	return &Driver{
		nodes:        make(map[int64]*driver.Node),
		outAdj:       make(map[int64][]adjEntry),
		inAdj:        make(map[int64][]adjEntry),
		byKind:       make(map[schema.NodeKind]map[int64]struct{}),
		fileByName:   make(map[string]int64),
		nsByFullName: make(map[string]int64),
		methodByKey:  make(map[string]int64),
	}
}

func methodKey(fullName, signature string) string { return fullName + "\x00" + signature }

func (d *Driver) AddVertex(_ context.Context, n *driver.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addVertexLocked(n)
}

// addVertexLocked assigns n's id if unset and records it, honouring the
// file-name, namespace-fullName, and method-key uniqueness invariants
// (spec §3).
func (d *Driver) addVertexLocked(n *driver.Node) error {
	if n.ID() != -1 {
		if _, ok := d.nodes[n.ID()]; ok {
			return nil // already persisted; AddVertex is idempotent.
		}
	}

	switch n.Kind() {
	case schema.File:
		name := n.String("name")
		if existing, ok := d.fileByName[name]; ok {
			n.SetID(existing)
			return nil
		}
	case schema.NamespaceBlock:
		full := n.String("fullName")
		if existing, ok := d.nsByFullName[full]; ok {
			n.SetID(existing)
			return nil
		}
	case schema.Method:
		key := methodKey(n.String("fullName"), n.String("signature"))
		if existing, ok := d.methodByKey[key]; ok {
			n.SetID(existing)
			return nil
		}
	}

	d.nextID++
	id := d.nextID
	n.SetID(id)
	d.nodes[id] = n

	if d.byKind[n.Kind()] == nil {
		d.byKind[n.Kind()] = make(map[int64]struct{})
	}
	d.byKind[n.Kind()][id] = struct{}{}

	switch n.Kind() {
	case schema.File:
		d.fileByName[n.String("name")] = id
	case schema.NamespaceBlock:
		d.nsByFullName[n.String("fullName")] = id
	case schema.Method:
		d.methodByKey[methodKey(n.String("fullName"), n.String("signature"))] = id
	}
	return nil
}

func (d *Driver) Exists(_ context.Context, n *driver.Node) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n.ID() == -1 {
		return false, nil
	}
	_, ok := d.nodes[n.ID()]
	return ok, nil
}

func (d *Driver) ExistsEdge(_ context.Context, src, dst *driver.Node, label schema.EdgeKind) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if src.ID() == -1 || dst.ID() == -1 {
		return false, nil
	}
	for _, e := range d.outAdj[src.ID()] {
		if e.label == label && e.other == dst.ID() {
			return true, nil
		}
	}
	return false, nil
}

func (d *Driver) AddEdge(ctx context.Context, src, dst *driver.Node, label schema.EdgeKind, properties map[string]any) error {
	if !schema.IsAllowed(src.Kind(), label, dst.Kind()) {
		return &cpgerr.SchemaViolation{
			MethodFullName: "",
			Detail:         fmt.Sprintf("edge %s not allowed from %s to %s", label, src.Kind(), dst.Kind()),
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if src.ID() == -1 {
		if err := d.addVertexLocked(src); err != nil {
			return err
		}
	}
	if dst.ID() == -1 {
		if err := d.addVertexLocked(dst); err != nil {
			return err
		}
	}

	for _, e := range d.outAdj[src.ID()] {
		if e.label == label && e.other == dst.ID() {
			return nil // idempotent, spec §8 property 7.
		}
	}

	d.outAdj[src.ID()] = append(d.outAdj[src.ID()], adjEntry{label, dst.ID(), properties})
	d.inAdj[dst.ID()] = append(d.inAdj[dst.ID()], adjEntry{label, src.ID(), properties})
	return nil
}

func (d *Driver) DeleteVertex(_ context.Context, n *driver.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteVertexLocked(n.ID())
}

func (d *Driver) deleteVertexLocked(id int64) error {
	stored, ok := d.nodes[id]
	if !ok {
		return nil // idempotent, spec §4.2.
	}
	delete(d.nodes, id)
	if kindSet := d.byKind[stored.Kind()]; kindSet != nil {
		delete(kindSet, id)
	}
	switch stored.Kind() {
	case schema.File:
		delete(d.fileByName, stored.String("name"))
	case schema.NamespaceBlock:
		delete(d.nsByFullName, stored.String("fullName"))
	case schema.Method:
		delete(d.methodByKey, methodKey(stored.String("fullName"), stored.String("signature")))
	}

	for _, e := range d.outAdj[id] {
		d.inAdj[e.other] = removeAdj(d.inAdj[e.other], id)
	}
	for _, e := range d.inAdj[id] {
		d.outAdj[e.other] = removeAdj(d.outAdj[e.other], id)
	}
	delete(d.outAdj, id)
	delete(d.inAdj, id)
	return nil
}

func removeAdj(entries []adjEntry, other int64) []adjEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.other != other {
			out = append(out, e)
		}
	}
	return out
}

// DeleteMethod removes the method's AST closure but preserves inbound
// CALL edges (spec §3 "Call-graph stability", §4.2).
func (d *Driver) DeleteMethod(_ context.Context, fullName, signature string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, ok := d.methodByKey[methodKey(fullName, signature)]
	if !ok {
		return nil
	}

	closure := d.astClosureLocked(id)

	// Every closure member's own edges are intra-method and safe to drop
	// outright. The METHOD node itself may additionally have inbound
	// CALL edges from external call sites, which spec §3 "Call-graph
	// stability" requires to survive the deletion as dangling references
	// — so those are saved before the METHOD node is removed, and
	// replayed onto a freshly inserted phantom head.
	inboundCalls := append([]adjEntry{}, d.inAdj[id]...)
	var preservedCallers []adjEntry
	for _, e := range inboundCalls {
		if e.label == schema.CallEdge {
			preservedCallers = append(preservedCallers, e)
		}
	}

	for member := range closure {
		if member == id {
			continue
		}
		if err := d.deleteVertexLocked(member); err != nil {
			return err
		}
	}

	methodNode := d.nodes[id]
	if err := d.deleteVertexLocked(id); err != nil {
		return err
	}

	if len(preservedCallers) > 0 && methodNode != nil {
		// Re-insert a phantom head so the preserved CALL edges have a
		// valid target, per spec §3 "dangling references are tolerated
		// until the target is re-created".
		phantom := driver.NewNode(schema.Method)
		phantom.Set("name", methodNode.String("name"))
		phantom.Set("fullName", methodNode.String("fullName"))
		phantom.Set("signature", methodNode.String("signature"))
		phantom.Set("external", true)
		if err := d.addVertexLocked(phantom); err != nil {
			return err
		}
		for _, e := range preservedCallers {
			d.outAdj[e.other] = append(d.outAdj[e.other], adjEntry{schema.CallEdge, phantom.ID(), e.props})
			d.inAdj[phantom.ID()] = append(d.inAdj[phantom.ID()], adjEntry{schema.CallEdge, e.other, e.props})
		}
	}

	return nil
}

// astClosureLocked returns every node id reachable from methodID via AST
// edges (the method's own AST subtree), including methodID itself.
func (d *Driver) astClosureLocked(methodID int64) map[int64]struct{} {
	closure := map[int64]struct{}{methodID: {}}
	queue := []int64{methodID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range d.outAdj[cur] {
			if e.label != schema.AST {
				continue
			}
			if _, seen := closure[e.other]; seen {
				continue
			}
			closure[e.other] = struct{}{}
			queue = append(queue, e.other)
		}
	}
	return closure
}

// traversalLabels is the edge-kind set get_method traverses outward
// along, per spec §4.3.
var traversalLabels = map[schema.EdgeKind]bool{
	schema.AST: true, schema.Ref: true, schema.CFG: true, schema.Argument: true,
	schema.CapturedBy: true, schema.BindsTo: true, schema.Receiver: true,
	schema.Condition: true, schema.Binds: true,
}

func (d *Driver) GetMethod(_ context.Context, fullName, signature string, includeBody bool) (*driver.Subgraph, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	view := driver.NewSubgraph()
	rootID, ok := d.methodByKey[methodKey(fullName, signature)]
	if !ok {
		return view, nil
	}

	visited := map[int64]struct{}{rootID: {}}
	if includeBody {
		queue := []int64{rootID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range d.outAdj[cur] {
				if !traversalLabels[e.label] {
					continue
				}
				if _, seen := visited[e.other]; seen {
					continue
				}
				visited[e.other] = struct{}{}
				queue = append(queue, e.other)
			}
		}
	}

	d.fillView(view, visited)
	return view, nil
}

func (d *Driver) GetProgramStructure(_ context.Context) (*driver.Subgraph, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	view := driver.NewSubgraph()
	visited := map[int64]struct{}{}
	queue := make([]int64, 0)
	for id := range d.byKind[schema.File] {
		visited[id] = struct{}{}
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range d.outAdj[cur] {
			if e.label != schema.AST {
				continue
			}
			dstNode := d.nodes[e.other]
			if dstNode == nil || dstNode.Kind() != schema.NamespaceBlock {
				continue
			}
			if _, seen := visited[e.other]; seen {
				continue
			}
			visited[e.other] = struct{}{}
			queue = append(queue, e.other)
		}
	}
	d.fillView(view, visited)
	return view, nil
}

func (d *Driver) GetNeighbours(_ context.Context, n *driver.Node) (*driver.Subgraph, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	view := driver.NewSubgraph()
	visited := map[int64]struct{}{n.ID(): {}}
	for _, e := range d.outAdj[n.ID()] {
		visited[e.other] = struct{}{}
	}
	for _, e := range d.inAdj[n.ID()] {
		visited[e.other] = struct{}{}
	}
	d.fillView(view, visited)
	return view, nil
}

func (d *Driver) GetWholeGraph(_ context.Context) (*driver.Subgraph, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	view := driver.NewSubgraph()
	all := make(map[int64]struct{}, len(d.nodes))
	for id := range d.nodes {
		all[id] = struct{}{}
	}
	d.fillView(view, all)
	return view, nil
}

func (d *Driver) GetVertexIDs(_ context.Context, lo, hi int64) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []int64
	for id := range d.nodes {
		if id >= lo && id <= hi {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (d *Driver) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID = 0
	d.nodes = make(map[int64]*driver.Node)
	d.outAdj = make(map[int64][]adjEntry)
	d.inAdj = make(map[int64][]adjEntry)
	d.byKind = make(map[schema.NodeKind]map[int64]struct{})
	d.fileByName = make(map[string]int64)
	d.nsByFullName = make(map[string]int64)
	d.methodByKey = make(map[string]int64)
	return nil
}

// fillView copies every node in ids into view, plus every edge whose
// endpoints are both in ids (spec §4.3 "Sub-graph retrieval builds a
// transient read-only view").
func (d *Driver) fillView(view *driver.Subgraph, ids map[int64]struct{}) {
	for id := range ids {
		if n, ok := d.nodes[id]; ok {
			view.Nodes = append(view.Nodes, n)
		}
	}
	seen := make(map[string]bool)
	for id := range ids {
		for _, e := range d.outAdj[id] {
			if _, ok := ids[e.other]; !ok {
				continue
			}
			key := fmt.Sprintf("%d>%d>%s", id, e.other, e.label)
			if seen[key] {
				continue
			}
			seen[key] = true
			view.Edges = append(view.Edges, &driver.Edge{
				Src: d.nodes[id], Dst: d.nodes[e.other], Label: e.label, Properties: e.props,
			})
		}
	}
}
