package memdriver

import (
	"context"
	"testing"

	"jvmcpg/internal/driver"
	"jvmcpg/internal/schema"
)

func TestAddVertexAssignsIDAndIsIdempotent(t *testing.T) {
	d := New()
	ctx := context.Background()

	n := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, n); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if n.ID() == -1 {
		t.Fatal("AddVertex did not assign an id")
	}

	if err := d.AddVertex(ctx, n); err != nil {
		t.Fatalf("second AddVertex: %v", err)
	}

	ok, err := d.Exists(ctx, n)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
}

func TestFileUniquenessByName(t *testing.T) {
	d := New()
	ctx := context.Background()

	a := driver.NewNode(schema.File).Set("name", "A.java").Set("hash", "h1")
	b := driver.NewNode(schema.File).Set("name", "A.java").Set("hash", "h1")
	if err := d.AddVertex(ctx, a); err != nil {
		t.Fatalf("AddVertex a: %v", err)
	}
	if err := d.AddVertex(ctx, b); err != nil {
		t.Fatalf("AddVertex b: %v", err)
	}
	if a.ID() != b.ID() {
		t.Errorf("two FILE nodes with the same name collapsed to different ids: %d vs %d", a.ID(), b.ID())
	}
}

func TestMethodUniquenessByFullNameAndSignature(t *testing.T) {
	d := New()
	ctx := context.Background()

	a := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")
	b := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, a); err != nil {
		t.Fatalf("AddVertex a: %v", err)
	}
	if err := d.AddVertex(ctx, b); err != nil {
		t.Fatalf("AddVertex b: %v", err)
	}
	if a.ID() != b.ID() {
		t.Errorf("two METHOD nodes with the same fullName+signature collapsed to different ids: %d vs %d", a.ID(), b.ID())
	}
}

func TestDeleteMethodThenRebuildReattachesCallerToTheRebuiltMethod(t *testing.T) {
	d := New()
	ctx := context.Background()

	callee := driver.NewNode(schema.Method).Set("name", "m").Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, callee); err != nil {
		t.Fatalf("AddVertex callee: %v", err)
	}
	oldBlock := driver.NewNode(schema.Block)
	if err := d.AddEdge(ctx, callee, oldBlock, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge method->block: %v", err)
	}

	call := driver.NewNode(schema.Call).Set("methodFullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddEdge(ctx, call, callee, schema.CallEdge, nil); err != nil {
		t.Fatalf("AddEdge call->callee: %v", err)
	}

	if err := d.DeleteMethod(ctx, "pkg.A.m", "()V"); err != nil {
		t.Fatalf("DeleteMethod: %v", err)
	}

	// Re-ingest the method, as buildClassWith does on an incremental
	// rebuild: a fresh *driver.Node with no id of its own.
	rebuilt := driver.NewNode(schema.Method).Set("name", "m").Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, rebuilt); err != nil {
		t.Fatalf("AddVertex rebuilt: %v", err)
	}
	newBlock := driver.NewNode(schema.Block)
	if err := d.AddEdge(ctx, rebuilt, newBlock, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge rebuilt->block: %v", err)
	}

	sub, err := d.GetNeighbours(ctx, call)
	if err != nil {
		t.Fatalf("GetNeighbours: %v", err)
	}
	var target *driver.Node
	for _, e := range sub.Out(call.ID()) {
		if e.Label == schema.CallEdge {
			target = e.Dst
		}
	}
	if target == nil {
		t.Fatal("caller lost its CALL edge entirely after rebuild")
	}
	if target.ID() != rebuilt.ID() {
		t.Errorf("caller's CALL edge points at id %d, want the rebuilt method's id %d", target.ID(), rebuilt.ID())
	}

	body, err := d.GetMethod(ctx, "pkg.A.m", "()V", true)
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}
	var hasBlock bool
	for _, n := range body.Nodes {
		if n.Kind() == schema.Block {
			hasBlock = true
		}
	}
	if !hasBlock {
		t.Error("rebuilt method's body is missing its BLOCK node")
	}
}

func TestAddEdgeRejectsDisallowedTriple(t *testing.T) {
	d := New()
	ctx := context.Background()

	file := driver.NewNode(schema.File).Set("name", "A.java")
	method := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")

	err := d.AddEdge(ctx, method, file, schema.CallEdge, nil)
	if err == nil {
		t.Fatal("expected a schema violation for METHOD -CALL-> FILE")
	}
}

func TestAddEdgeAutoInsertsUnpersistedEndpoints(t *testing.T) {
	d := New()
	ctx := context.Background()

	ns := driver.NewNode(schema.NamespaceBlock).Set("fullName", "pkg")
	typeDecl := driver.NewNode(schema.TypeDecl).Set("fullName", "pkg.A")

	if err := d.AddEdge(ctx, ns, typeDecl, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if ns.ID() == -1 || typeDecl.ID() == -1 {
		t.Fatal("AddEdge did not auto-insert its endpoints")
	}

	ok, err := d.ExistsEdge(ctx, ns, typeDecl, schema.AST)
	if err != nil || !ok {
		t.Fatalf("ExistsEdge: ok=%v err=%v", ok, err)
	}
}

func TestDeleteMethodPreservesInboundCallEdgesOnAPhantomHead(t *testing.T) {
	d := New()
	ctx := context.Background()

	callee := driver.NewNode(schema.Method).Set("name", "m").Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, callee); err != nil {
		t.Fatalf("AddVertex callee: %v", err)
	}
	block := driver.NewNode(schema.Block)
	if err := d.AddEdge(ctx, callee, block, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge method->block: %v", err)
	}

	call := driver.NewNode(schema.Call).Set("methodFullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddEdge(ctx, call, callee, schema.CallEdge, nil); err != nil {
		t.Fatalf("AddEdge call->callee: %v", err)
	}

	if err := d.DeleteMethod(ctx, "pkg.A.m", "()V"); err != nil {
		t.Fatalf("DeleteMethod: %v", err)
	}

	sub, err := d.GetNeighbours(ctx, call)
	if err != nil {
		t.Fatalf("GetNeighbours: %v", err)
	}
	var phantom *driver.Node
	for _, e := range sub.Out(call.ID()) {
		if e.Label == schema.CallEdge {
			phantom = e.Dst
		}
	}
	if phantom == nil {
		t.Fatal("inbound CALL edge was dropped instead of preserved onto a phantom head")
	}
	if phantom.String("fullName") != "pkg.A.m" {
		t.Errorf("phantom head fullName = %q, want pkg.A.m", phantom.String("fullName"))
	}

	// The deleted method's own body (the BLOCK) must not have survived.
	whole, err := d.GetWholeGraph(ctx)
	if err != nil {
		t.Fatalf("GetWholeGraph: %v", err)
	}
	for _, n := range whole.Nodes {
		if n.Kind() == schema.Block {
			t.Error("method body survived DeleteMethod")
		}
	}
}

func TestDeleteMethodOfUnknownMethodIsANoOp(t *testing.T) {
	d := New()
	if err := d.DeleteMethod(context.Background(), "nothing.here", "()V"); err != nil {
		t.Fatalf("DeleteMethod on absent method: %v", err)
	}
}

func TestClearEmptiesTheStore(t *testing.T) {
	d := New()
	ctx := context.Background()
	n := driver.NewNode(schema.File).Set("name", "A.java")
	if err := d.AddVertex(ctx, n); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if err := d.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	whole, err := d.GetWholeGraph(ctx)
	if err != nil {
		t.Fatalf("GetWholeGraph: %v", err)
	}
	if len(whole.Nodes) != 0 {
		t.Errorf("store not empty after Clear: %d nodes", len(whole.Nodes))
	}
}

func TestGetVertexIDsRange(t *testing.T) {
	d := New()
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 5; i++ {
		n := driver.NewNode(schema.Local).Set("name", "v")
		if err := d.AddVertex(ctx, n); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
		ids = append(ids, n.ID())
	}
	got, err := d.GetVertexIDs(ctx, ids[1], ids[3])
	if err != nil {
		t.Fatalf("GetVertexIDs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetVertexIDs(%d,%d) = %v, want 3 ids", ids[1], ids[3], got)
	}
}
