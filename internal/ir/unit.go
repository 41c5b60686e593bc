package ir

// OpKind classifies one Unit. The AST builder's mapping table (spec
// §4.5 policy 2) switches on this value to pick the CPG node/edge shape
// it emits.
type OpKind string

const (
	OpAssign     OpKind = "ASSIGN"      // Target = <rhs>, see RhsKind
	OpFieldWrite OpKind = "FIELD_WRITE" // FieldBase.FieldName = Lhs
	OpInvokeStmt OpKind = "INVOKE_STMT" // call whose result is discarded
	OpBranch     OpKind = "BRANCH"      // if (Cond) goto TrueTarget else FalseTarget
	OpGoto       OpKind = "GOTO"
	OpReturn     OpKind = "RETURN"
	OpNop        OpKind = "NOP"
)

// RhsKind classifies the right-hand side of an OpAssign unit.
type RhsKind string

const (
	RhsConst     RhsKind = "CONST"
	RhsCopy      RhsKind = "COPY"   // Target = Lhs, where Lhs names a local/param
	RhsBinary    RhsKind = "BINARY" // Target = Lhs Operator Rhs
	RhsFieldRead RhsKind = "FIELD_READ"
	RhsNew       RhsKind = "NEW"
	RhsMethodRef RhsKind = "METHOD_REF"
	RhsInvoke    RhsKind = "INVOKE"
	RhsArrayInit RhsKind = "ARRAY_INIT"
)

// OperandKind discriminates the union held by an Operand.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandLocal
	OperandParam
	OperandConst
	OperandThis
)

// Operand is a use site: a reference to a local, a parameter, a literal
// constant, or 'this'. Three-address form means an intermediate value
// computed by one unit and consumed by a later one is always named by a
// synthetic local (e.g. "$t0") rather than referenced positionally, so
// every operand resolves the same way regardless of where it came from.
type Operand struct {
	Kind  OperandKind
	Local *LocalRef
	Param *ParamRef
	Const any
}

// LocalRef names a local variable at a use or def site.
type LocalRef struct {
	Name         string
	TypeFullName string
}

// ParamRef names a formal parameter at a use site.
type ParamRef struct {
	Name         string
	TypeFullName string
	Index        int
}

// InvokeInfo describes a method call, whether used as an expression
// (RhsInvoke) or as a bare statement (OpInvokeStmt).
type InvokeInfo struct {
	MethodFullName string
	Signature      string
	Name           string
	Static         bool
	Dispatch       DispatchHint
	Receiver       Operand // zero value when Static
	Args           []Operand
}

// DispatchHint tells the AST builder, which copies it into the CALL
// node's dispatchType, whether the lifter already
// knows this call site binds statically or may resolve to more than one
// override at runtime (spec §4.8 policy: "dynamic: true for call sites
// whose static type admits more than one override").
type DispatchHint int

const (
	DispatchUnknown DispatchHint = iota
	DispatchStatic
	DispatchVirtual
)

// Unit is one three-address instruction in a method's lowered body (spec
// Glossary "UnitGraph"). Index is this unit's position in its owning
// UnitGraph.Units() slice; Succs/Preds on the UnitGraph refer to units by
// that index.
type Unit struct {
	Index int
	Op    OpKind
	Line  int
	Col   int

	// OpAssign / OpFieldWrite common fields.
	RhsKind  RhsKind
	Operator string // binary operator token, e.g. "ADD", "GT"; only set when RhsKind == RhsBinary
	Target   *LocalRef
	Lhs      Operand
	Rhs      Operand

	// RhsConst.
	ConstValue any

	// RhsNew.
	NewType string

	// RhsFieldRead / OpFieldWrite.
	FieldName string
	FieldBase Operand // zero value if the field access is static

	// RhsMethodRef.
	MethodRefFullName string
	MethodRefSig      string

	// RhsInvoke / OpInvokeStmt.
	Invoke *InvokeInfo

	// OpBranch.
	Cond        Operand
	TrueTarget  int
	FalseTarget int

	// OpGoto.
	GotoTarget int

	// OpReturn.
	ReturnValue *Operand // nil for return-void
}
