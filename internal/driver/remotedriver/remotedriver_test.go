package remotedriver

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/schema"
)

func newTestPair(t *testing.T) *Driver {
	t.Helper()
	backing := memdriver.New()
	srv := httptest.NewServer(NewServer(backing).Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestAddVertexRoundTripsOverHTTP(t *testing.T) {
	d := newTestPair(t)
	ctx := context.Background()

	n := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, n); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if n.ID() == -1 {
		t.Fatal("AddVertex did not assign an id over the wire")
	}

	ok, err := d.Exists(ctx, n)
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
}

func TestExistsReportsFalseForAnUnassignedNode(t *testing.T) {
	d := newTestPair(t)
	n := driver.NewNode(schema.Method)
	ok, err := d.Exists(context.Background(), n)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists on a node with no id should report false without a round trip")
	}
}

func TestAddEdgeRejectsDisallowedTripleAsASchemaViolation(t *testing.T) {
	d := newTestPair(t)
	ctx := context.Background()

	file := driver.NewNode(schema.File).Set("name", "A.java")
	method := driver.NewNode(schema.Method).Set("fullName", "pkg.A.m").Set("signature", "()V")

	err := d.AddEdge(ctx, method, file, schema.CallEdge, nil)
	if err == nil {
		t.Fatal("expected an error for METHOD -CALL-> FILE")
	}
	var sv *cpgerr.SchemaViolation
	if !errors.As(err, &sv) {
		t.Fatalf("error = %v (%T), want *cpgerr.SchemaViolation translated from the 422 response", err, err)
	}
}

func TestAddEdgeAutoInsertsUnpersistedEndpoints(t *testing.T) {
	d := newTestPair(t)
	ctx := context.Background()

	ns := driver.NewNode(schema.NamespaceBlock).Set("fullName", "pkg")
	typeDecl := driver.NewNode(schema.TypeDecl).Set("fullName", "pkg.A")
	if err := d.AddEdge(ctx, ns, typeDecl, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if ns.ID() == -1 || typeDecl.ID() == -1 {
		t.Fatal("AddEdge did not auto-insert its endpoints over the wire")
	}

	ok, err := d.ExistsEdge(ctx, ns, typeDecl, schema.AST)
	if err != nil || !ok {
		t.Fatalf("ExistsEdge: ok=%v err=%v", ok, err)
	}
}

func TestGetMethodIncludeBodyOverHTTP(t *testing.T) {
	d := newTestPair(t)
	ctx := context.Background()

	method := driver.NewNode(schema.Method).Set("name", "m").Set("fullName", "pkg.A.m").Set("signature", "()V")
	block := driver.NewNode(schema.Block)
	if err := d.AddEdge(ctx, method, block, schema.AST, nil); err != nil {
		t.Fatalf("AddEdge method->block: %v", err)
	}

	headOnly, err := d.GetMethod(ctx, "pkg.A.m", "()V", false)
	if err != nil {
		t.Fatalf("GetMethod headOnly: %v", err)
	}
	if len(headOnly.Nodes) != 1 {
		t.Errorf("headOnly nodes = %d, want 1", len(headOnly.Nodes))
	}

	withBody, err := d.GetMethod(ctx, "pkg.A.m", "()V", true)
	if err != nil {
		t.Fatalf("GetMethod withBody: %v", err)
	}
	if len(withBody.Nodes) != 2 {
		t.Errorf("withBody nodes = %d, want 2 (method, block)", len(withBody.Nodes))
	}
}

func TestDeleteMethodPreservesInboundCallEdgesOnAPhantomHead(t *testing.T) {
	d := newTestPair(t)
	ctx := context.Background()

	callee := driver.NewNode(schema.Method).Set("name", "m").Set("fullName", "pkg.A.m").Set("signature", "()V")
	if err := d.AddVertex(ctx, callee); err != nil {
		t.Fatalf("AddVertex callee: %v", err)
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
	if phantom.String("fullName") != "pkg.A.m" || !phantom.Bool("external") {
		t.Errorf("phantom head = %+v, want fullName pkg.A.m, external=true", phantom.Properties())
	}
}

func TestGetVertexIDsOverHTTP(t *testing.T) {
	d := newTestPair(t)
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

func TestClearEmptiesTheBackingStoreOverHTTP(t *testing.T) {
	d := newTestPair(t)
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
