package schema

import "testing"

func TestIsAllowedAcceptsProgramStructure(t *testing.T) {
	if !IsAllowed(File, AST, NamespaceBlock) {
		t.Error("FILE -AST-> NAMESPACE_BLOCK should be allowed")
	}
	if !IsAllowed(TypeDecl, AST, Method) {
		t.Error("TYPE_DECL -AST-> METHOD should be allowed")
	}
}

func TestIsAllowedRejectsArbitraryTriples(t *testing.T) {
	if IsAllowed(File, CallEdge, Method) {
		t.Error("FILE -CALL-> METHOD should not be allowed")
	}
	if IsAllowed(Literal, AST, Method) {
		t.Error("LITERAL -AST-> METHOD should not be allowed")
	}
}

func TestCallGraphEdgeIsCallToMethodOnly(t *testing.T) {
	if !IsAllowed(Call, CallEdge, Method) {
		t.Error("CALL -CALL-> METHOD should be allowed")
	}
	if IsAllowed(Call, CallEdge, Call) {
		t.Error("CALL -CALL-> CALL should not be allowed")
	}
}

func TestAllPropertiesIncludesCommonBodyPropertiesForBodyKinds(t *testing.T) {
	props := AllProperties(Call)
	names := map[string]bool{}
	for _, d := range props {
		names[d.Name] = true
	}
	for _, want := range []string{"order", "argumentIndex", "lineNumber", "columnNumber", "code", "methodFullName"} {
		if !names[want] {
			t.Errorf("CALL properties missing %q", want)
		}
	}
}

func TestAllPropertiesOmitsCommonBodyPropertiesForProgramStructureKinds(t *testing.T) {
	props := AllProperties(File)
	for _, d := range props {
		if d.Name == "argumentIndex" {
			t.Error("FILE should not carry argumentIndex, a body-node-only property")
		}
	}
}

func TestDefaultReturnsSentinelForUnsetProperty(t *testing.T) {
	v, ok := Default(Method, "signature")
	if !ok {
		t.Fatal("METHOD.signature should be a declared property")
	}
	if v != DefaultSignature {
		t.Errorf("METHOD.signature default = %v, want %q", v, DefaultSignature)
	}
}

func TestDefaultReportsUndeclaredProperty(t *testing.T) {
	if _, ok := Default(File, "nonsense"); ok {
		t.Error("FILE.nonsense should not be a declared property")
	}
}
