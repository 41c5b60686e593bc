package pdgbuild_test

import (
	"context"
	"testing"

	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/extract/astbuild"
	"jvmcpg/internal/extract/fixtures"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/extract/pdgbuild"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

func TestBuildLinksRefArgumentAndReceiverEdges(t *testing.T) {
	m := fixtures.NewMethod("pkg.A.run", "(Ljava/lang/String;)V", "A.java").
		AstParent("pkg.A", "TYPE_DECL").Returns("void", true).
		Param("msg", "java.lang.String", false)

	m.Add(ir.Unit{
		Op: ir.OpInvokeStmt,
		Invoke: &ir.InvokeInfo{
			MethodFullName: "pkg.B.log",
			Signature:      "(Ljava/lang/String;)V",
			Name:           "log",
			Static:         false,
			Dispatch:       ir.DispatchVirtual,
			Receiver:       fixtures.ThisOperand(),
			Args:           []ir.Operand{fixtures.ParamOperand("msg", "java.lang.String", 1)},
		},
	})
	ug := m.Build()

	d := memdriver.New()
	assoc := ids.NewAssociation()
	ctx := context.Background()
	if _, err := astbuild.Build(ctx, d, assoc, ug); err != nil {
		t.Fatalf("astbuild.Build: %v", err)
	}
	if err := pdgbuild.Build(ctx, d, assoc, "pkg.A.run", "(Ljava/lang/String;)V"); err != nil {
		t.Fatalf("pdgbuild.Build: %v", err)
	}

	sub, err := d.GetMethod(ctx, "pkg.A.run", "(Ljava/lang/String;)V", true)
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}

	calls := sub.NodesOfKind(schema.Call)
	if len(calls) != 1 {
		t.Fatalf("expected one CALL node, got %d", len(calls))
	}
	call := calls[0]

	args := sub.Out(call.ID())
	var argEdges, refEdges, receiverEdges int
	for _, e := range args {
		switch e.Label {
		case schema.Argument:
			argEdges++
		case schema.Receiver:
			receiverEdges++
		}
	}
	if argEdges != 1 {
		t.Errorf("ARGUMENT edges out of the CALL = %d, want 1", argEdges)
	}
	if receiverEdges != 1 {
		t.Errorf("RECEIVER edges out of the CALL = %d, want 1", receiverEdges)
	}

	for _, e := range sub.Edges {
		if e.Label == schema.Ref {
			refEdges++
		}
	}
	if refEdges == 0 {
		t.Error("expected at least one REF edge binding the 'msg' argument IDENTIFIER to its PARAM declaration")
	}

	params := sub.NodesOfKind(schema.MethodParameterIn)
	if len(params) != 1 {
		t.Fatalf("expected one METHOD_PARAMETER_IN, got %d", len(params))
	}
	var refToParam bool
	for _, e := range sub.In(params[0].ID()) {
		if e.Label == schema.Ref {
			refToParam = true
		}
	}
	if !refToParam {
		t.Error("expected a REF edge landing on the 'msg' parameter")
	}
}

func TestBuildLeavesFieldIdentifierUnresolvedWithNoMemberNode(t *testing.T) {
	m := fixtures.NewMethod("pkg.A.touch", "()V", "A.java").AstParent("pkg.A", "TYPE_DECL").Returns("void", true)
	m.Add(ir.Unit{
		Op:        ir.OpFieldWrite,
		FieldBase: fixtures.ThisOperand(),
		FieldName: "count",
		Lhs:       fixtures.ConstOperand(1),
	})
	ug := m.Build()

	d := memdriver.New()
	assoc := ids.NewAssociation()
	ctx := context.Background()
	if _, err := astbuild.Build(ctx, d, assoc, ug); err != nil {
		t.Fatalf("astbuild.Build: %v", err)
	}
	if err := pdgbuild.Build(ctx, d, assoc, "pkg.A.touch", "()V"); err != nil {
		t.Fatalf("pdgbuild.Build: %v", err)
	}

	sub, err := d.GetMethod(ctx, "pkg.A.touch", "()V", true)
	if err != nil {
		t.Fatalf("GetMethod: %v", err)
	}
	for _, e := range sub.Edges {
		if e.Label == schema.Ref {
			t.Error("a FIELD_IDENTIFIER should stay unresolved: no MEMBER node exists at method-body scope to bind it to")
		}
	}
}
