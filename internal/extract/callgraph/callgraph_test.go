package callgraph_test

import (
	"context"
	"testing"

	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/extract/astbuild"
	"jvmcpg/internal/extract/callgraph"
	"jvmcpg/internal/extract/fixtures"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

type stubOracle struct {
	sites []callgraph.CallSite
}

func (o stubOracle) OutEdges(_, _ string) []callgraph.CallSite { return o.sites }

func callerWithInvoke(targetFullName, targetSig string) ir.UnitGraph {
	m := fixtures.NewMethod("pkg.A.run", "()V", "A.java").AstParent("pkg.A", "TYPE_DECL").Returns("void", true)
	m.Add(ir.Unit{
		Op: ir.OpInvokeStmt,
		Invoke: &ir.InvokeInfo{
			MethodFullName: targetFullName,
			Signature:      targetSig,
			Name:           "target",
			Static:         true,
			Dispatch:       ir.DispatchStatic,
		},
	})
	return m.Build()
}

func TestBuildCreatesPhantomForUnknownTarget(t *testing.T) {
	d := memdriver.New()
	assoc := ids.NewAssociation()
	ctx := context.Background()

	if _, err := astbuild.Build(ctx, d, assoc, callerWithInvoke("pkg.B.target", "()V")); err != nil {
		t.Fatalf("astbuild.Build: %v", err)
	}

	oracle := stubOracle{sites: []callgraph.CallSite{{CallUnitIndex: 0, TargetFullName: "pkg.B.target", TargetSig: "()V"}}}
	phantoms, err := callgraph.Build(ctx, d, assoc, oracle, []callgraph.MethodKey{{FullName: "pkg.A.run", Signature: "()V"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(phantoms) != 1 {
		t.Fatalf("phantoms = %v, want exactly one", phantoms)
	}
	if phantoms[0].MethodFullName != "pkg.B.target" {
		t.Errorf("phantom MethodFullName = %q, want pkg.B.target", phantoms[0].MethodFullName)
	}

	whole, err := d.GetWholeGraph(ctx)
	if err != nil {
		t.Fatalf("GetWholeGraph: %v", err)
	}
	found := false
	for _, n := range whole.Nodes {
		if n.Kind() == schema.Method && n.String("fullName") == "pkg.B.target" {
			if !n.Bool("external") {
				t.Error("phantom METHOD node should carry external=true")
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected a phantom METHOD node for pkg.B.target")
	}

	callEdges := whole.EdgesOfKind(schema.CallEdge)
	if len(callEdges) != 1 {
		t.Fatalf("CALL edges = %d, want 1", len(callEdges))
	}
}

func TestBuildResolvesToAnExistingMethodWithoutAPhantom(t *testing.T) {
	d := memdriver.New()
	assoc := ids.NewAssociation()
	ctx := context.Background()

	target := fixtures.NewMethod("pkg.B.target", "()V", "B.java").AstParent("pkg.B", "TYPE_DECL").Returns("void", true)
	if _, err := astbuild.Build(ctx, d, assoc, target.Build()); err != nil {
		t.Fatalf("astbuild.Build target: %v", err)
	}
	if _, err := astbuild.Build(ctx, d, assoc, callerWithInvoke("pkg.B.target", "()V")); err != nil {
		t.Fatalf("astbuild.Build caller: %v", err)
	}

	oracle := stubOracle{sites: []callgraph.CallSite{{CallUnitIndex: 0, TargetFullName: "pkg.B.target", TargetSig: "()V"}}}
	phantoms, err := callgraph.Build(ctx, d, assoc, oracle, []callgraph.MethodKey{{FullName: "pkg.A.run", Signature: "()V"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(phantoms) != 0 {
		t.Fatalf("phantoms = %v, want none (target already has a body)", phantoms)
	}
}

func TestBuildSkipsUnresolvableCallSites(t *testing.T) {
	d := memdriver.New()
	assoc := ids.NewAssociation()
	ctx := context.Background()

	if _, err := astbuild.Build(ctx, d, assoc, callerWithInvoke("pkg.B.target", "()V")); err != nil {
		t.Fatalf("astbuild.Build: %v", err)
	}

	oracle := stubOracle{sites: []callgraph.CallSite{{CallUnitIndex: 0, TargetFullName: "", TargetSig: ""}}}
	phantoms, err := callgraph.Build(ctx, d, assoc, oracle, []callgraph.MethodKey{{FullName: "pkg.A.run", Signature: "()V"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(phantoms) != 0 {
		t.Errorf("phantoms = %v, want none for an unresolved call site", phantoms)
	}

	whole, err := d.GetWholeGraph(ctx)
	if err != nil {
		t.Fatalf("GetWholeGraph: %v", err)
	}
	if len(whole.EdgesOfKind(schema.CallEdge)) != 0 {
		t.Error("expected no CALL edges for an unresolved call site")
	}
}
