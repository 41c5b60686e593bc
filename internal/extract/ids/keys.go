package ids

import "strconv"

// MethodScope is the association-map key prefix identifying one method
// within a single extraction run, so AST/CFG/PDG/call-graph builders
// working on different methods never collide in the shared Association.
func MethodScope(fullName, signature string) string {
	return fullName + "\x00" + signature
}

// UnitKey is the association key for the top-level body node(s) emitted
// for unit index i within scope.
func UnitKey(scope string, i int) string {
	return scope + "\x00unit\x00" + strconv.Itoa(i)
}

// LocalKey is the association key for the LOCAL node declared under a
// method's entry block with the given name.
func LocalKey(scope, name string) string {
	return scope + "\x00local\x00" + name
}

// ParamKey is the association key for the METHOD_PARAMETER_IN node with
// the given name.
func ParamKey(scope, name string) string {
	return scope + "\x00param\x00" + name
}

// BodyKey is the association key under which every body node created for
// scope is additionally recorded, in emission order, so later builders
// can scan the whole method body without re-walking the AST.
func BodyKey(scope string) string {
	return scope + "\x00body"
}

// EntryKey is the association key for the method's entry BLOCK node.
func EntryKey(scope string) string {
	return scope + "\x00entry"
}

// ReturnKey is the association key for the method's METHOD_RETURN node.
func ReturnKey(scope string) string {
	return scope + "\x00return"
}

// CallSiteKey is the association key for the CALL node emitted for an
// invocation (as opposed to an assignment/binary/field-access pseudo-
// call) originating from unit index i, for the call-graph builder to
// find without guessing whether that unit's top-level node is itself
// the invoke or merely wraps it.
func CallSiteKey(scope string, i int) string {
	return scope + "\x00callsite\x00" + strconv.Itoa(i)
}

// JumpTargetKey is the association key for the TRUE/FALSE JUMP_TARGET
// node astbuild attaches under the CONTROL_STRUCTURE emitted for the
// branch unit at index i, so cfgbuild can thread CFG edges through it
// rather than skipping straight to the branch's resolved successor.
func JumpTargetKey(scope string, i int, branch string) string {
	return scope + "\x00jumptarget\x00" + strconv.Itoa(i) + "\x00" + branch
}
