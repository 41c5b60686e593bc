// Package astbuild lowers one method's UnitGraph into a METHOD node, its
// head (parameters, return, modifiers, entry block, locals) and its body
// tree, following the mapping table in spec §4.5. It emits AST edges and
// the CONDITION edge that belongs to a control structure's own shape; it
// does not emit CFG (built by internal/extract/cfgbuild) or the
// data-flow ARGUMENT/RECEIVER/REF edges (built by
// internal/extract/pdgbuild), which both consume the association
// entries this package records.
package astbuild

import (
	"context"
	"fmt"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/extract/ids"
	"jvmcpg/internal/ir"
	"jvmcpg/internal/schema"
)

// binaryOpNames maps a Unit.Operator token to the Joern-style operator
// method name recorded as the call's methodFullName (spec §4.5 policy
// 2: "binary op → CALL(name=\"<op>\")" — the CALL's own name is the
// bare operator token itself; methodFullName carries the longer form).
var binaryOpNames = map[string]string{
	"ADD": "<operator>.addition",
	"SUB": "<operator>.subtraction",
	"MUL": "<operator>.multiplication",
	"DIV": "<operator>.division",
	"MOD": "<operator>.modulo",
	"GT":  "<operator>.greaterThan",
	"LT":  "<operator>.lessThan",
	"GE":  "<operator>.greaterEqualsThan",
	"LE":  "<operator>.lessEqualsThan",
	"EQ":  "<operator>.equals",
	"NE":  "<operator>.notEquals",
	"AND": "<operator>.logicalAnd",
	"OR":  "<operator>.logicalOr",
}

const (
	assignmentCallName  = "<operator>.assignment"
	fieldAccessCallName = "<operator>.fieldAccess"
)

func binaryOpName(operator string) string {
	if name, ok := binaryOpNames[operator]; ok {
		return name
	}
	return "<operator>." + operator
}

// builder holds the state threaded through one method's lowering.
type builder struct {
	ctx    context.Context
	d      driver.Driver
	assoc  *ids.Association
	scope  string
	method ir.MethodInfo

	// order tracks the next AST sibling index per parent, keyed by
	// pointer identity rather than id: a parent built bottom-up (its
	// children are attached before the parent itself is persisted) has
	// id -1 until its own AddEdge call, and several such parents would
	// otherwise collide on that shared sentinel key.
	order map[*driver.Node]int
}

func (b *builder) nextOrder(parent *driver.Node) int {
	b.order[parent]++
	return b.order[parent]
}

// addAST inserts child under parent with the given order/argumentIndex,
// records it in the flat per-method body list, and returns any schema
// error verbatim.
func (b *builder) addAST(parent, child *driver.Node, argumentIndex int) error {
	order := b.nextOrder(parent)
	child.SetOrder(order)
	child.SetArgumentIndex(argumentIndex)
	if err := b.d.AddEdge(b.ctx, parent, child, schema.AST, nil); err != nil {
		return err
	}
	if schema.IsBodyKind(child.Kind()) {
		b.assoc.Record(ids.BodyKey(b.scope), child)
	}
	return nil
}

// Build lowers ug into a persisted METHOD node and its full head+body
// tree, returning the METHOD node. Every emitted body node is recorded
// in assoc under the keys documented in internal/extract/ids/keys.go for
// cfgbuild, pdgbuild, and callgraph to consume.
func Build(ctx context.Context, d driver.Driver, assoc *ids.Association, ug ir.UnitGraph) (*driver.Node, error) {
	mi := ug.Method()
	scope := ids.MethodScope(mi.FullName, mi.Signature)
	b := &builder{ctx: ctx, d: d, assoc: assoc, scope: scope, method: mi, order: make(map[*driver.Node]int)}

	methodNode := driver.NewNode(schema.Method)
	methodNode.
		Set("name", mi.Name).
		Set("fullName", mi.FullName).
		Set("signature", mi.Signature).
		Set("filename", mi.Filename).
		Set("lineNumber", mi.Line).
		Set("columnNumber", mi.Col).
		Set("astParentFullName", mi.AstParentFullName).
		Set("astParentType", mi.AstParentType)
	if err := d.AddVertex(ctx, methodNode); err != nil {
		return nil, err
	}

	if err := b.buildModifiers(methodNode); err != nil {
		return nil, err
	}

	entry := driver.NewNode(schema.Block).Set("typeFullName", "void").Set("code", "")
	if err := b.addAST(methodNode, entry, 0); err != nil {
		return nil, err
	}
	assoc.Record(ids.EntryKey(scope), entry)

	for _, p := range mi.Params {
		if err := b.buildParam(methodNode, p); err != nil {
			return nil, err
		}
	}

	ret := driver.NewNode(schema.MethodReturn).
		Set("code", mi.ReturnTypeFullName).
		Set("typeFullName", mi.ReturnTypeFullName).
		Set("evaluationStrategy", string(schema.ByReference))
	if err := b.addAST(methodNode, ret, -1); err != nil {
		return nil, err
	}
	assoc.Record(ids.ReturnKey(scope), ret)

	for _, l := range mi.Locals {
		local := driver.NewNode(schema.Local).
			Set("name", l.Name).
			Set("code", l.TypeFullName+" "+l.Name).
			Set("typeFullName", l.TypeFullName)
		if err := b.addAST(entry, local, -1); err != nil {
			return nil, err
		}
		assoc.Record(ids.LocalKey(scope, l.Name), local)
	}

	for _, u := range ug.Units() {
		if err := b.lowerUnit(entry, u); err != nil {
			var sv *cpgerr.SchemaViolation
			if isSchemaViolation(err, &sv) {
				return nil, sv
			}
			return nil, err
		}
	}

	return methodNode, nil
}

func isSchemaViolation(err error, out **cpgerr.SchemaViolation) bool {
	sv, ok := err.(*cpgerr.SchemaViolation)
	if ok {
		*out = sv
	}
	return ok
}

func (b *builder) buildModifiers(methodNode *driver.Node) error {
	flags := b.method.Access
	add := func(t string) error {
		m := driver.NewNode(schema.Modifier).Set("modifierType", t)
		return b.addAST(methodNode, m, -1)
	}
	switch {
	case flags.Public:
		if err := add("PUBLIC"); err != nil {
			return err
		}
	case flags.Private:
		if err := add("PRIVATE"); err != nil {
			return err
		}
	case flags.Protected:
		if err := add("PROTECTED"); err != nil {
			return err
		}
	}
	if flags.Static {
		if err := add("STATIC"); err != nil {
			return err
		}
	}
	if flags.Final {
		if err := add("FINAL"); err != nil {
			return err
		}
	}
	if flags.Abstract {
		if err := add("ABSTRACT"); err != nil {
			return err
		}
	}
	if flags.Synchronized {
		if err := add("SYNCHRONIZED"); err != nil {
			return err
		}
	}
	if flags.Native {
		if err := add("NATIVE"); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) buildParam(methodNode *driver.Node, p ir.ParamInfo) error {
	strategy := schema.ByReference
	if p.IsPrimitive {
		strategy = schema.ByValue
	}
	param := driver.NewNode(schema.MethodParameterIn).
		Set("name", p.Name).
		Set("code", p.TypeFullName+" "+p.Name).
		Set("typeFullName", p.TypeFullName).
		Set("evaluationStrategy", string(strategy))
	if err := b.addAST(methodNode, param, p.Index); err != nil {
		return err
	}
	b.assoc.Record(ids.ParamKey(b.scope, p.Name), param)
	return nil
}

// lowerUnit emits the top-level body node(s) for one IR unit under
// parent (the method's entry block) and records the unit's own
// association entry so cfgbuild can chain control flow between units.
func (b *builder) lowerUnit(parent *driver.Node, u ir.Unit) error {
	top, err := b.lowerTop(parent, u)
	if err != nil {
		return err
	}
	if top != nil {
		if err := b.addAST(parent, top, -1); err != nil {
			return err
		}
		b.assoc.Record(ids.UnitKey(b.scope, u.Index), top)
	}
	return nil
}

func (b *builder) lowerTop(parent *driver.Node, u ir.Unit) (*driver.Node, error) {
	switch u.Op {
	case ir.OpAssign:
		return b.lowerAssign(u)
	case ir.OpFieldWrite:
		return b.lowerFieldWrite(u)
	case ir.OpInvokeStmt:
		return b.lowerInvoke(u.Invoke, u.Index, u.Line, u.Col)
	case ir.OpBranch:
		return b.lowerBranch(u)
	case ir.OpReturn:
		return b.lowerReturn(u)
	case ir.OpGoto, ir.OpNop:
		// Purely a CFG concern; cfgbuild reads the UnitGraph's Succs
		// directly and never looks up an association entry for these.
		return nil, nil
	default:
		return nil, fmt.Errorf("astbuild: unhandled unit op %q at index %d", u.Op, u.Index)
	}
}

func (b *builder) lowerAssign(u ir.Unit) (*driver.Node, error) {
	target := b.operandLeaf(ir.Operand{Kind: ir.OperandLocal, Local: u.Target}, u.Line, u.Col)

	var rhs *driver.Node
	var err error
	switch u.RhsKind {
	case ir.RhsConst:
		rhs = b.literal(u.ConstValue, u.Line, u.Col)
	case ir.RhsCopy:
		rhs = b.operandLeaf(u.Lhs, u.Line, u.Col)
	case ir.RhsBinary:
		rhs, err = b.binaryCall(u)
	case ir.RhsFieldRead:
		rhs, err = b.fieldAccessCall(u.FieldBase, u.FieldName, u.Line, u.Col)
	case ir.RhsNew:
		rhs = driver.NewNode(schema.TypeRef).SetLine(u.Line).SetCol(u.Col).SetCode("new " + u.NewType).Set("typeFullName", u.NewType)
	case ir.RhsMethodRef:
		rhs = driver.NewNode(schema.MethodRef).SetLine(u.Line).SetCol(u.Col).SetCode(u.MethodRefFullName).
			Set("methodFullName", u.MethodRefFullName).Set("signature", u.MethodRefSig)
	case ir.RhsInvoke:
		rhs, err = b.lowerInvoke(u.Invoke, u.Index, u.Line, u.Col)
	case ir.RhsArrayInit:
		rhs = driver.NewNode(schema.ArrayInitializer).SetLine(u.Line).SetCol(u.Col).SetCode("{}")
	default:
		return nil, fmt.Errorf("astbuild: unhandled rhs kind %q at unit %d", u.RhsKind, u.Index)
	}
	if err != nil {
		return nil, err
	}

	top := driver.NewNode(schema.Call).
		SetLine(u.Line).SetCol(u.Col).
		Set("name", assignmentCallName).
		Set("methodFullName", assignmentCallName).
		Set("signature", schema.DefaultSignature).
		Set("dispatchType", string(schema.StaticDispatch)).
		SetCode(target.Code() + " = " + rhs.Code())

	if err := b.addAST(top, target, 1); err != nil {
		return nil, err
	}
	if err := b.addAST(top, rhs, 2); err != nil {
		return nil, err
	}
	top.Set("_args", []*driver.Node{target, rhs})
	return top, nil
}

func (b *builder) lowerFieldWrite(u ir.Unit) (*driver.Node, error) {
	access, err := b.fieldAccessCall(u.FieldBase, u.FieldName, u.Line, u.Col)
	if err != nil {
		return nil, err
	}
	value := b.operandLeaf(u.Lhs, u.Line, u.Col)

	top := driver.NewNode(schema.Call).
		SetLine(u.Line).SetCol(u.Col).
		Set("name", assignmentCallName).
		Set("methodFullName", assignmentCallName).
		Set("signature", schema.DefaultSignature).
		Set("dispatchType", string(schema.StaticDispatch)).
		SetCode(access.Code() + " = " + value.Code())
	if err := b.addAST(top, access, 1); err != nil {
		return nil, err
	}
	if err := b.addAST(top, value, 2); err != nil {
		return nil, err
	}
	top.Set("_args", []*driver.Node{access, value})
	return top, nil
}

func (b *builder) binaryCall(u ir.Unit) (*driver.Node, error) {
	lhs := b.operandLeaf(u.Lhs, u.Line, u.Col)
	rhs := b.operandLeaf(u.Rhs, u.Line, u.Col)
	call := driver.NewNode(schema.Call).
		SetLine(u.Line).SetCol(u.Col).
		Set("name", u.Operator).
		Set("methodFullName", binaryOpName(u.Operator)).
		Set("signature", schema.DefaultSignature).
		Set("dispatchType", string(schema.StaticDispatch)).
		SetCode(lhs.Code() + " " + u.Operator + " " + rhs.Code())
	if err := b.addAST(call, lhs, 1); err != nil {
		return nil, err
	}
	if err := b.addAST(call, rhs, 2); err != nil {
		return nil, err
	}
	call.Set("_args", []*driver.Node{lhs, rhs})
	return call, nil
}

func (b *builder) fieldAccessCall(base ir.Operand, fieldName string, line, col int) (*driver.Node, error) {
	baseNode := b.operandLeaf(base, line, col)
	field := driver.NewNode(schema.FieldIdentifier).SetLine(line).SetCol(col).SetCode(fieldName)
	field.Set("_refKind", "member")
	field.Set("_refName", fieldName)

	call := driver.NewNode(schema.Call).
		SetLine(line).SetCol(col).
		Set("name", fieldAccessCallName).
		Set("methodFullName", fieldAccessCallName).
		Set("signature", schema.DefaultSignature).
		Set("dispatchType", string(schema.StaticDispatch)).
		SetCode(baseNode.Code() + "." + fieldName)
	if err := b.addAST(call, baseNode, 1); err != nil {
		return nil, err
	}
	if err := b.addAST(call, field, 2); err != nil {
		return nil, err
	}
	call.Set("_args", []*driver.Node{baseNode, field})
	return call, nil
}

func (b *builder) lowerInvoke(inv *ir.InvokeInfo, unitIndex, line, col int) (*driver.Node, error) {
	dispatch := schema.StaticDispatch
	if inv.Dispatch == ir.DispatchVirtual {
		dispatch = schema.DynamicDispatch
	}
	call := driver.NewNode(schema.Call).
		SetLine(line).SetCol(col).
		Set("name", inv.Name).
		Set("methodFullName", inv.MethodFullName).
		Set("signature", inv.Signature).
		Set("dispatchType", string(dispatch)).
		SetCode(inv.Name + "(...)")

	var receiver *driver.Node
	if !inv.Static {
		receiver = b.operandLeaf(inv.Receiver, line, col)
		if err := b.addAST(call, receiver, 0); err != nil {
			return nil, err
		}
	}
	var args []*driver.Node
	for i, a := range inv.Args {
		argNode := b.operandLeaf(a, line, col)
		if err := b.addAST(call, argNode, i+1); err != nil {
			return nil, err
		}
		args = append(args, argNode)
	}
	call.Set("_args", args)
	call.Set("_receiver", receiver)
	b.assoc.Record(ids.CallSiteKey(b.scope, unitIndex), call)
	return call, nil
}

func (b *builder) lowerBranch(u ir.Unit) (*driver.Node, error) {
	cs := driver.NewNode(schema.ControlStructure).SetLine(u.Line).SetCol(u.Col).SetCode("IF")
	cond := b.operandLeaf(u.Cond, u.Line, u.Col)
	if err := b.d.AddEdge(b.ctx, cs, cond, schema.Condition, nil); err != nil {
		return nil, err
	}
	b.assoc.Record(ids.BodyKey(b.scope), cond)

	trueTarget := driver.NewNode(schema.JumpTarget).SetLine(u.Line).SetCol(u.Col).SetCode("TRUE").Set("name", "TRUE")
	falseTarget := driver.NewNode(schema.JumpTarget).SetLine(u.Line).SetCol(u.Col).SetCode("FALSE").Set("name", "FALSE")
	if err := b.addAST(cs, trueTarget, 1); err != nil {
		return nil, err
	}
	if err := b.addAST(cs, falseTarget, 2); err != nil {
		return nil, err
	}
	b.assoc.Record(ids.JumpTargetKey(b.scope, u.Index, "TRUE"), trueTarget)
	b.assoc.Record(ids.JumpTargetKey(b.scope, u.Index, "FALSE"), falseTarget)
	return cs, nil
}

func (b *builder) lowerReturn(u ir.Unit) (*driver.Node, error) {
	ret := driver.NewNode(schema.Return).SetLine(u.Line).SetCol(u.Col).SetCode("return")
	if u.ReturnValue != nil {
		val := b.operandLeaf(*u.ReturnValue, u.Line, u.Col)
		if err := b.addAST(ret, val, 1); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// operandLeaf lowers a use-site operand into an IDENTIFIER or LITERAL
// node. It never calls addAST itself; the caller attaches it to whatever
// parent applies with the right argumentIndex.
func (b *builder) operandLeaf(op ir.Operand, line, col int) *driver.Node {
	switch op.Kind {
	case ir.OperandLocal:
		n := driver.NewNode(schema.Identifier).SetLine(line).SetCol(col).
			SetCode(op.Local.Name).Set("name", op.Local.Name).Set("typeFullName", op.Local.TypeFullName)
		n.Set("_refKind", "local")
		n.Set("_refName", op.Local.Name)
		return n
	case ir.OperandParam:
		n := driver.NewNode(schema.Identifier).SetLine(line).SetCol(col).
			SetCode(op.Param.Name).Set("name", op.Param.Name).Set("typeFullName", op.Param.TypeFullName)
		n.Set("_refKind", "param")
		n.Set("_refName", op.Param.Name)
		return n
	case ir.OperandThis:
		n := driver.NewNode(schema.Identifier).SetLine(line).SetCol(col).
			SetCode("this").Set("name", "this").Set("typeFullName", b.method.AstParentFullName)
		return n
	case ir.OperandConst:
		return b.literal(op.Const, line, col)
	default:
		return driver.NewNode(schema.Unknown).SetLine(line).SetCol(col).SetCode("<unknown>")
	}
}

func (b *builder) literal(value any, line, col int) *driver.Node {
	return driver.NewNode(schema.Literal).SetLine(line).SetCol(col).
		SetCode(fmt.Sprintf("%v", value)).Set("typeFullName", literalType(value))
}

func literalType(value any) string {
	switch value.(type) {
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "double"
	case bool:
		return "boolean"
	case string:
		return "java.lang.String"
	default:
		return schema.DefaultString
	}
}
