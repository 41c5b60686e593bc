package schema

// Triple is one legal (src-kind, edge, dst-kind) combination.
type Triple struct {
	Src NodeKind
	Edge EdgeKind
	Dst NodeKind
}

var allowedTriples = buildAllowedTriples()

// IsAllowed is the pure predicate every builder consults before calling
// the driver, and every driver re-checks as a defensive second line
// (spec §4.1).
func IsAllowed(src NodeKind, edge EdgeKind, dst NodeKind) bool {
	_, ok := allowedTriples[Triple{src, edge, dst}]
	return ok
}

// Triples returns every legal triple, for callers that need to enumerate
// the schema (e.g. documentation generation or the sqlite driver's schema
// self-check).
func Triples() []Triple {
	out := make([]Triple, 0, len(allowedTriples))
	for t := range allowedTriples {
		out = append(out, t)
	}
	return out
}

func buildAllowedTriples() map[Triple]struct{} {
	t := make(map[Triple]struct{})
	add := func(src NodeKind, edge EdgeKind, dst NodeKind) {
		t[Triple{src, edge, dst}] = struct{}{}
	}
	addAll := func(src NodeKind, edge EdgeKind, dsts []NodeKind) {
		for _, d := range dsts {
			add(src, edge, d)
		}
	}

	// Program structure.
	add(File, AST, NamespaceBlock)
	add(NamespaceBlock, AST, NamespaceBlock)
	add(NamespaceBlock, AST, TypeDecl)
	add(File, AST, TypeDecl)
	add(TypeDecl, AST, Member)
	add(TypeDecl, AST, Method)
	add(TypeDecl, AST, TypeParameter)
	add(TypeDecl, AST, Modifier)

	// Method head.
	add(Method, AST, Block)
	add(Method, AST, MethodReturn)
	add(Method, AST, MethodParameterIn)
	add(Method, AST, Modifier)
	add(Block, AST, Local)
	addAll(Block, AST, bodyKinds)

	// Method body: calls nest arguments/receiver/field-access children.
	callChildren := append(append([]NodeKind{}, bodyKinds...), TypeArgument)
	addAll(Call, AST, callChildren)
	add(Identifier, AST, FieldIdentifier)
	add(MethodRef, AST, TypeArgument)

	// return/array-initializer children (expressions they hold).
	exprKinds := []NodeKind{Call, Literal, Identifier, FieldIdentifier, MethodRef, TypeRef, Unknown, ArrayInitializer}
	addAll(Return, AST, exprKinds)
	addAll(ArrayInitializer, AST, exprKinds)

	// Control structures.
	add(ControlStructure, AST, JumpTarget)

	// CFG: threads through every body node, the entry block, and the
	// method's single return sink.
	cfgKinds := append(append([]NodeKind{}, bodyKinds...), Block, MethodReturn)
	for _, src := range cfgKinds {
		for _, dst := range cfgKinds {
			add(src, CFG, dst)
		}
	}

	// PDG.
	addAll(Call, Argument, bodyKinds)
	add(Call, Receiver, Identifier)
	add(Call, Receiver, Local)
	add(Identifier, Ref, Local)
	add(Identifier, Ref, MethodParameterIn)
	add(FieldIdentifier, Ref, Member)
	addAll(ControlStructure, Condition, bodyKinds)

	// Call graph.
	add(Call, CallEdge, Method)

	// Type/method bindings.
	add(TypeDecl, Binds, Binding)
	add(TypeArgument, BindsTo, TypeParameter)
	add(Binding, BindsTo, Method)

	// Method to source file.
	add(Method, SourceFile, File)

	// Reserved: closure capture. No builder in this module emits it yet
	// (spec §2 GLOSSARY: "reserved"); kept legal so a future capture
	// builder does not require a schema change.
	add(Identifier, CapturedBy, Local)

	return t
}
