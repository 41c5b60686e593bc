package schema

// PropertyType is the declared type of a schema property.
type PropertyType int

const (
	StringProp PropertyType = iota
	IntProp
	BoolProp
)

// PropertyDescriptor names one property a node kind may carry, its type,
// and its default value (spec §6.3: "every unset property defaults to a
// well-known sentinel").
type PropertyDescriptor struct {
	Name    string
	Type    PropertyType
	Default any
}

// Sentinel defaults, spec §6.3.
const (
	DefaultString    = "null"
	DefaultInt       = -1
	DefaultSignature = "()"
	DefaultLanguage  = "JAVA"
	DefaultVersion   = "1.8"
)

// Properties every body node carries in addition to its kind-specific
// ones (spec §3, "Every body node additionally carries...").
var commonBodyProperties = []PropertyDescriptor{
	{"order", IntProp, DefaultInt},
	{"argumentIndex", IntProp, DefaultInt},
	{"lineNumber", IntProp, DefaultInt},
	{"columnNumber", IntProp, DefaultInt},
	{"code", StringProp, DefaultString},
}

// descriptors maps each node kind to its kind-specific property list.
// Common body properties (order, argumentIndex, line/column, code) are
// appended automatically for kinds in bodyKinds plus BLOCK and LOCAL,
// which also carry positional/textual information.
var descriptors = map[NodeKind][]PropertyDescriptor{
	MetaData: {
		{"language", StringProp, DefaultLanguage},
		{"version", StringProp, DefaultVersion},
	},
	File: {
		{"name", StringProp, DefaultString},
		{"hash", StringProp, DefaultString},
	},
	NamespaceBlock: {
		{"name", StringProp, DefaultString},
		{"fullName", StringProp, DefaultString},
		{"filename", StringProp, DefaultString},
	},
	TypeDecl: {
		{"name", StringProp, DefaultString},
		{"fullName", StringProp, DefaultString},
		{"astParentFullName", StringProp, DefaultString},
		{"astParentType", StringProp, DefaultString},
		{"filename", StringProp, DefaultString},
	},
	Member: {
		{"name", StringProp, DefaultString},
		{"code", StringProp, DefaultString},
		{"typeFullName", StringProp, DefaultString},
	},
	Method: {
		{"name", StringProp, DefaultString},
		{"fullName", StringProp, DefaultString},
		{"signature", StringProp, DefaultSignature},
		{"filename", StringProp, DefaultString},
		{"lineNumber", IntProp, DefaultInt},
		{"columnNumber", IntProp, DefaultInt},
		{"astParentFullName", StringProp, DefaultString},
		{"astParentType", StringProp, DefaultString},
	},
	MethodParameterIn: {
		{"name", StringProp, DefaultString},
		{"code", StringProp, DefaultString},
		{"typeFullName", StringProp, DefaultString},
		{"evaluationStrategy", StringProp, string(ByReference)},
	},
	MethodReturn: {
		{"code", StringProp, DefaultString},
		{"typeFullName", StringProp, DefaultString},
		{"evaluationStrategy", StringProp, string(ByReference)},
	},
	Modifier: {
		{"modifierType", StringProp, DefaultString},
	},
	Local: {
		{"name", StringProp, DefaultString},
		{"code", StringProp, DefaultString},
		{"typeFullName", StringProp, DefaultString},
	},
	Block: {
		{"typeFullName", StringProp, DefaultString},
		{"code", StringProp, DefaultString},
	},
	Call: {
		{"name", StringProp, DefaultString},
		{"methodFullName", StringProp, DefaultString},
		{"signature", StringProp, DefaultSignature},
		{"dispatchType", StringProp, string(StaticDispatch)},
		{"typeFullName", StringProp, DefaultString},
	},
}

// AllProperties returns the property descriptors for kind, including the
// common body properties when kind is a body node, BLOCK, or LOCAL.
func AllProperties(kind NodeKind) []PropertyDescriptor {
	out := append([]PropertyDescriptor{}, descriptors[kind]...)
	if IsBodyKind(kind) || kind == Block || kind == Local {
		out = append(out, commonBodyProperties...)
	}
	return out
}

// Default returns the sentinel default for property name on kind, and
// whether that property is declared for kind at all.
func Default(kind NodeKind, name string) (any, bool) {
	for _, d := range AllProperties(kind) {
		if d.Name == name {
			return d.Default, true
		}
	}
	return nil, false
}
