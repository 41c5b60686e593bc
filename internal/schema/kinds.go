// Package schema declares the closed set of node kinds, edge kinds, and
// legal (src-kind, edge, dst-kind) triples that every driver back-end and
// every builder in this module must respect.
package schema

// NodeKind identifies the label of a CPG node. The set is closed: no
// caller may introduce a kind outside this list.
type NodeKind string

const (
	MetaData         NodeKind = "META_DATA"
	File             NodeKind = "FILE"
	NamespaceBlock   NodeKind = "NAMESPACE_BLOCK"
	TypeDecl         NodeKind = "TYPE_DECL"
	Member           NodeKind = "MEMBER"
	Method           NodeKind = "METHOD"
	MethodParameterIn NodeKind = "METHOD_PARAMETER_IN"
	MethodReturn     NodeKind = "METHOD_RETURN"
	Modifier         NodeKind = "MODIFIER"
	Local            NodeKind = "LOCAL"
	Block            NodeKind = "BLOCK"
	Call             NodeKind = "CALL"
	Literal          NodeKind = "LITERAL"
	Identifier       NodeKind = "IDENTIFIER"
	FieldIdentifier  NodeKind = "FIELD_IDENTIFIER"
	MethodRef        NodeKind = "METHOD_REF"
	TypeRef          NodeKind = "TYPE_REF"
	Return           NodeKind = "RETURN"
	JumpTarget       NodeKind = "JUMP_TARGET"
	ControlStructure NodeKind = "CONTROL_STRUCTURE"
	Unknown          NodeKind = "UNKNOWN"
	ArrayInitializer NodeKind = "ARRAY_INITIALIZER"
	TypeArgument     NodeKind = "TYPE_ARGUMENT"
	TypeParameter    NodeKind = "TYPE_PARAMETER"
	Binding          NodeKind = "BINDING"
)

// EdgeKind identifies the label of a CPG edge.
type EdgeKind string

const (
	AST        EdgeKind = "AST"
	CFG        EdgeKind = "CFG"
	Argument   EdgeKind = "ARGUMENT"
	Receiver   EdgeKind = "RECEIVER"
	Ref        EdgeKind = "REF"
	Condition  EdgeKind = "CONDITION"
	CallEdge   EdgeKind = "CALL"
	Binds      EdgeKind = "BINDS"
	BindsTo    EdgeKind = "BINDS_TO"
	SourceFile EdgeKind = "SOURCE_FILE"
	CapturedBy EdgeKind = "CAPTURED_BY"
)

// EvaluationStrategy is the property value for METHOD_PARAMETER_IN and
// METHOD_RETURN describing how a value is passed.
type EvaluationStrategy string

const (
	ByReference EvaluationStrategy = "BY_REFERENCE"
	ByValue     EvaluationStrategy = "BY_VALUE"
)

// DispatchType is the property value for CALL describing how the target is
// resolved.
type DispatchType string

const (
	StaticDispatch  DispatchType = "STATIC_DISPATCH"
	DynamicDispatch DispatchType = "DYNAMIC_DISPATCH"
)

// bodyKinds is the set of node kinds that make up a method body — the
// nodes a builder emits while lowering units, as opposed to program
// structure (FILE, NAMESPACE_BLOCK, TYPE_DECL, MEMBER) or the method head
// (METHOD, METHOD_PARAMETER_IN, METHOD_RETURN, MODIFIER, LOCAL, BLOCK).
var bodyKinds = []NodeKind{
	Call, Literal, Identifier, FieldIdentifier, MethodRef, TypeRef,
	Return, JumpTarget, ControlStructure, Unknown, ArrayInitializer,
}

// IsBodyKind reports whether k is one of the method-body node kinds.
func IsBodyKind(k NodeKind) bool {
	for _, b := range bodyKinds {
		if b == k {
			return true
		}
	}
	return false
}
