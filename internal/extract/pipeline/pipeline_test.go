package pipeline_test

import (
	"context"
	"os"
	"testing"

	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/extract/fixtures"
	"jvmcpg/internal/extract/pipeline"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

// stubCompiler returns a fixed set of classes once, regardless of the
// paths it's handed, standing in for a real Compiler in these tests.
type stubCompiler struct {
	classes []pipeline.ClassUnit
}

func (s stubCompiler) Compile(_ context.Context, _ []string, _ string) ([]pipeline.ClassUnit, error) {
	return s.classes, nil
}

func tempInput(t *testing.T) string {
	f, err := os.CreateTemp(t.TempDir(), "*.java")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Close()
	return f.Name()
}

// addMethod builds "int sum(int a, int b) { int c = a + b; return c; }" as
// an ir.UnitGraph.
func addMethod() ir.UnitGraph {
	m := fixtures.NewMethod("pkg.Adder.sum", "(II)I", "Adder.java").
		AstParent("pkg.Adder", "TYPE_DECL").
		Returns("int", true).
		Param("a", "int", true).
		Param("b", "int", true).
		Local("c", "int")

	assign := m.Add(ir.Unit{
		Op:       ir.OpAssign,
		RhsKind:  ir.RhsBinary,
		Operator: "ADD",
		Target:   &ir.LocalRef{Name: "c", TypeFullName: "int"},
		Lhs:      fixtures.ParamOperand("a", "int", 1),
		Rhs:      fixtures.ParamOperand("b", "int", 2),
		Line:     1, Col: 1,
	})
	ret := m.Add(ir.Unit{
		Op:          ir.OpReturn,
		ReturnValue: &ir.Operand{Kind: ir.OperandLocal, Local: &ir.LocalRef{Name: "c", TypeFullName: "int"}},
		Line:        2, Col: 1,
	})
	m.Chain(assign, ret)
	return m.Build()
}

// branchMethod builds "int max(int a, int b) { if (a > b) return a; return
// b; }" — a ConditionalN-style method with a single branch and two return
// points.
func branchMethod() ir.UnitGraph {
	m := fixtures.NewMethod("pkg.Adder.max", "(II)I", "Adder.java").
		AstParent("pkg.Adder", "TYPE_DECL").
		Returns("int", true).
		Param("a", "int", true).
		Param("b", "int", true)

	branch := m.Add(ir.Unit{
		Op:          ir.OpBranch,
		Cond:        fixtures.ParamOperand("a", "int", 1),
		TrueTarget:  1,
		FalseTarget: 2,
		Line:        1, Col: 1,
	})
	retA := m.Add(ir.Unit{
		Op:          ir.OpReturn,
		ReturnValue: &ir.Operand{Kind: ir.OperandParam, Param: &ir.ParamRef{Name: "a", TypeFullName: "int", Index: 1}},
		Line:        2, Col: 1,
	})
	retB := m.Add(ir.Unit{
		Op:          ir.OpReturn,
		ReturnValue: &ir.Operand{Kind: ir.OperandParam, Param: &ir.ParamRef{Name: "b", TypeFullName: "int", Index: 2}},
		Line:        3, Col: 1,
	})
	m.Link(branch, retA)
	m.Link(branch, retB)
	return m.Build()
}

func TestProjectBuildsMethodBodyCFGAndPDG(t *testing.T) {
	d := memdriver.New()
	classes := []pipeline.ClassUnit{{
		Name:              "Adder.java",
		Hash:              "h1",
		TypeFullName:      "pkg.Adder",
		AstParentType:     "NAMESPACE_BLOCK",
		NamespaceFullName: "pkg",
		Methods:           []ir.UnitGraph{addMethod()},
	}}
	p := pipeline.New(d, stubCompiler{classes: classes}, nil, pipeline.DefaultConfig())

	path := tempInput(t)
	ctx := context.Background()
	if err := p.Load(ctx, []string{path}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	result, err := p.Project(ctx)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(result.Rebuilt) != 1 || result.Rebuilt[0] != "Adder.java" {
		t.Fatalf("Rebuilt = %v, want [Adder.java]", result.Rebuilt)
	}
	if len(result.Schema) != 0 {
		t.Fatalf("unexpected schema violations: %v", result.Schema)
	}
	if p.State() != pipeline.StateIdle {
		t.Fatalf("state after Project = %s, want %s", p.State(), pipeline.StateIdle)
	}

	sub, err := d.GetMethod(ctx, "pkg.Adder.sum", "(II)I", true)
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}
	if len(sub.NodesOfKind(schema.Method)) != 1 {
		t.Fatalf("expected exactly one METHOD node, got %d", len(sub.NodesOfKind(schema.Method)))
	}

	assignments := sub.NodesOfKind(schema.Call)
	var foundAdd bool
	for _, c := range assignments {
		if c.String("name") == "ADD" {
			foundAdd = true
		}
	}
	if !foundAdd {
		t.Error("expected a CALL(name=\"ADD\") node for a + b")
	}

	refs := sub.EdgesOfKind(schema.Ref)
	if len(refs) == 0 {
		t.Error("expected REF edges linking IDENTIFIER uses to their PARAM/LOCAL declarations")
	}

	args := sub.EdgesOfKind(schema.Argument)
	if len(args) == 0 {
		t.Error("expected ARGUMENT edges from the addition CALL to its operands")
	}

	cfg := sub.EdgesOfKind(schema.CFG)
	if len(cfg) == 0 {
		t.Error("expected CFG edges threading the method body")
	}
}

func TestProjectBuildsBothBranchesOfAConditional(t *testing.T) {
	d := memdriver.New()
	classes := []pipeline.ClassUnit{{
		Name:          "Adder.java",
		Hash:          "h1",
		TypeFullName:  "pkg.Adder",
		AstParentType: "NAMESPACE_BLOCK",
		Methods:       []ir.UnitGraph{branchMethod()},
	}}
	p := pipeline.New(d, stubCompiler{classes: classes}, nil, pipeline.DefaultConfig())
	path := tempInput(t)
	ctx := context.Background()
	if err := p.Load(ctx, []string{path}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := p.Project(ctx); err != nil {
		t.Fatalf("Project: %v", err)
	}

	sub, err := d.GetMethod(ctx, "pkg.Adder.max", "(II)I", true)
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}
	if len(sub.NodesOfKind(schema.ControlStructure)) != 1 {
		t.Fatalf("expected one CONTROL_STRUCTURE node, got %d", len(sub.NodesOfKind(schema.ControlStructure)))
	}
	if len(sub.NodesOfKind(schema.Return)) != 2 {
		t.Fatalf("expected two RETURN nodes, got %d", len(sub.NodesOfKind(schema.Return)))
	}

	jumpTargets := sub.NodesOfKind(schema.JumpTarget)
	if len(jumpTargets) != 2 {
		t.Fatalf("expected two JUMP_TARGET nodes, got %d", len(jumpTargets))
	}

	cond := sub.NodesOfKind(schema.ControlStructure)[0]
	outFromCond := map[int64]bool{}
	for _, e := range sub.Out(cond.ID()) {
		if e.Label == schema.CFG {
			outFromCond[e.Dst.ID()] = true
		}
	}
	var trueN, falseN int
	for _, jt := range jumpTargets {
		if !outFromCond[jt.ID()] {
			t.Errorf("CONTROL_STRUCTURE has no CFG edge to JUMP_TARGET %q", jt.String("name"))
			continue
		}
		switch jt.String("name") {
		case "TRUE":
			trueN++
		case "FALSE":
			falseN++
		}
	}
	if trueN != 1 || falseN != 1 {
		t.Errorf("CONTROL_STRUCTURE CFG fan-out reaches %d TRUE, %d FALSE JUMP_TARGET, want 1 each", trueN, falseN)
	}
}

func TestProjectSkipsUnchangedClassesByHash(t *testing.T) {
	d := memdriver.New()
	classes := []pipeline.ClassUnit{{
		Name: "Adder.java", Hash: "h1", TypeFullName: "pkg.Adder", AstParentType: "NAMESPACE_BLOCK",
		Methods: []ir.UnitGraph{addMethod()},
	}}
	path := tempInput(t)
	ctx := context.Background()

	p1 := pipeline.New(d, stubCompiler{classes: classes}, nil, pipeline.DefaultConfig())
	if err := p1.Load(ctx, []string{path}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := p1.Project(ctx); err != nil {
		t.Fatalf("first Project: %v", err)
	}

	p2 := pipeline.New(d, stubCompiler{classes: classes}, nil, pipeline.DefaultConfig())
	if err := p2.Load(ctx, []string{path}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	result, err := p2.Project(ctx)
	if err != nil {
		t.Fatalf("second Project: %v", err)
	}
	if len(result.Rebuilt) != 0 || len(result.Skipped) != 1 {
		t.Fatalf("second run: Rebuilt=%v Skipped=%v, want nothing rebuilt", result.Rebuilt, result.Skipped)
	}
}

func TestLoadFailsOnMissingInput(t *testing.T) {
	p := pipeline.New(memdriver.New(), stubCompiler{}, nil, pipeline.DefaultConfig())
	err := p.Load(context.Background(), []string{"/no/such/file.java"})
	if err == nil {
		t.Fatal("expected Load to fail on a missing input path")
	}
	if p.State() != pipeline.StateIdle {
		t.Errorf("state after a failed Load = %s, want unchanged %s", p.State(), pipeline.StateIdle)
	}
}
