// Package ir declares the abstract view of one method's body that the
// extractor consumes: an ordered list of three-address units with
// predecessor/successor relations and a per-unit source location (spec
// Glossary "UnitGraph"). The bytecode lifter that actually produces a
// UnitGraph from a .class file is deliberately out of scope (spec §1) —
// this package only names the boundary.
package ir

// AccessFlags mirrors the subset of JVM access flags the AST builder
// needs to derive MODIFIER nodes (spec §4.5 policy 1).
type AccessFlags struct {
	Public        bool
	Private       bool
	Protected     bool
	Static        bool
	Final         bool
	Abstract      bool
	Synchronized  bool
	Native        bool
}

// ParamInfo describes one formal parameter.
type ParamInfo struct {
	Name         string
	TypeFullName string
	Index        int // 1-based source position
	IsPrimitive  bool
}

// LocalInfo describes one method-local variable declared in the entry
// block (spec §4.5 policy: "Locals appear as LOCAL children of the
// method's entry block").
type LocalInfo struct {
	Name         string
	TypeFullName string
}

// MethodInfo is the method head information the AST builder needs before
// it ever looks at a single unit (spec §4.5 policy 1).
type MethodInfo struct {
	Name               string
	FullName           string
	Signature          string
	Filename           string
	Line, Col          int
	AstParentFullName  string
	AstParentType      string
	ReturnTypeFullName string
	ReturnIsPrimitive  bool
	Access             AccessFlags
	Params             []ParamInfo
	Locals             []LocalInfo
}

// UnitGraph is the external IR view of one method: an ordered list of
// basic units plus predecessor/successor relations by index, and a
// per-unit line/column (spec §1, Glossary). The core never constructs a
// UnitGraph itself; it is handed one per method by the caller running the
// extractor pipeline.
type UnitGraph interface {
	Method() MethodInfo

	// Units returns every unit in control-flow order (spec §4.6: "Walks
	// the unit-graph successor relation").
	Units() []Unit

	// Succs returns the indices of units that may execute immediately
	// after the unit at index i.
	Succs(i int) []int

	// Preds returns the indices of units that may execute immediately
	// before the unit at index i.
	Preds(i int) []int
}
