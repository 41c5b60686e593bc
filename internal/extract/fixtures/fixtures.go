// Package fixtures builds ir.UnitGraph and pipeline.ClassUnit values
// directly from Go code, standing in for the bytecode lifter spec §1
// deliberately keeps out of scope. Tests use it to drive the pipeline
// without a real .class file; cmd/cpg-extract's demo Compiler (see
// compiler.go) uses the same builder to turn a bare file path into a
// minimal one-method class, just enough to exercise the pipeline
// end-to-end without performing real bytecode analysis.
package fixtures

import "jvmcpg/internal/ir"

// Method builds one ir.UnitGraph incrementally.
type Method struct {
	info  ir.MethodInfo
	units []ir.Unit
	succs map[int][]int
	preds map[int][]int
}

// NewMethod starts a method builder. name is derived from fullName's
// last segment.
func NewMethod(fullName, signature, filename string) *Method {
	return &Method{
		info: ir.MethodInfo{
			Name:      lastSegment(fullName),
			FullName:  fullName,
			Signature: signature,
			Filename:  filename,
		},
		succs: map[int][]int{},
		preds: map[int][]int{},
	}
}

func lastSegment(fullName string) string {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			return fullName[i+1:]
		}
	}
	return fullName
}

// AstParent sets the method's enclosing TYPE_DECL reference.
func (m *Method) AstParent(fullName, kind string) *Method {
	m.info.AstParentFullName, m.info.AstParentType = fullName, kind
	return m
}

// Returns sets the method's declared return type.
func (m *Method) Returns(typeFullName string, primitive bool) *Method {
	m.info.ReturnTypeFullName, m.info.ReturnIsPrimitive = typeFullName, primitive
	return m
}

// Access sets the method's access flags.
func (m *Method) Access(a ir.AccessFlags) *Method {
	m.info.Access = a
	return m
}

// Line sets the method head's declared source position.
func (m *Method) Line(line, col int) *Method {
	m.info.Line, m.info.Col = line, col
	return m
}

// Param appends a formal parameter, 1-based index assigned in call order.
func (m *Method) Param(name, typeFullName string, primitive bool) *Method {
	m.info.Params = append(m.info.Params, ir.ParamInfo{
		Name: name, TypeFullName: typeFullName, Index: len(m.info.Params) + 1, IsPrimitive: primitive,
	})
	return m
}

// Local declares a method-local variable.
func (m *Method) Local(name, typeFullName string) *Method {
	m.info.Locals = append(m.info.Locals, ir.LocalInfo{Name: name, TypeFullName: typeFullName})
	return m
}

// Add appends u, assigning its Index, and returns that index for use in
// subsequent Link calls.
func (m *Method) Add(u ir.Unit) int {
	u.Index = len(m.units)
	m.units = append(m.units, u)
	return u.Index
}

// Link records that control may flow from unit "from" directly to unit
// "to". Fixtures wire this explicitly rather than assuming fall-through,
// since OpBranch/OpGoto units need more than one successor and the
// builder has no way to guess which ones without being told.
func (m *Method) Link(from, to int) *Method {
	m.succs[from] = append(m.succs[from], to)
	m.preds[to] = append(m.preds[to], from)
	return m
}

// Chain links every consecutive pair in indices, for straight-line
// sequences.
func (m *Method) Chain(indices ...int) *Method {
	for i := 0; i+1 < len(indices); i++ {
		m.Link(indices[i], indices[i+1])
	}
	return m
}

// Build finalises the method into an ir.UnitGraph.
func (m *Method) Build() ir.UnitGraph {
	return &unitGraph{info: m.info, units: append([]ir.Unit(nil), m.units...), succs: m.succs, preds: m.preds}
}

type unitGraph struct {
	info  ir.MethodInfo
	units []ir.Unit
	succs map[int][]int
	preds map[int][]int
}

func (g *unitGraph) Method() ir.MethodInfo { return g.info }
func (g *unitGraph) Units() []ir.Unit      { return g.units }
func (g *unitGraph) Succs(i int) []int     { return g.succs[i] }
func (g *unitGraph) Preds(i int) []int     { return g.preds[i] }

// Operand constructors, for compact unit literals in test fixtures.

// LocalOperand references a local variable.
func LocalOperand(name, typeFullName string) ir.Operand {
	return ir.Operand{Kind: ir.OperandLocal, Local: &ir.LocalRef{Name: name, TypeFullName: typeFullName}}
}

// ParamOperand references a formal parameter by its 1-based index.
func ParamOperand(name, typeFullName string, index int) ir.Operand {
	return ir.Operand{Kind: ir.OperandParam, Param: &ir.ParamRef{Name: name, TypeFullName: typeFullName, Index: index}}
}

// ConstOperand references a literal constant.
func ConstOperand(v any) ir.Operand {
	return ir.Operand{Kind: ir.OperandConst, Const: v}
}

// ThisOperand references the receiver.
func ThisOperand() ir.Operand {
	return ir.Operand{Kind: ir.OperandThis}
}
