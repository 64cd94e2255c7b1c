package jit

import (
	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

// AttributeDecl is a recognized "my $x :Type" declaration. The call that
// applies the attributes at run time looks like
//
//	attributes->import(__PACKAGE__, \$x, 'Type', ...)
//
// The type argument has been applied to the declaration table. Removing it
// from the call is left to whoever rewrites the host tree: TypeArg names
// the op to drop, and Removable says the whole call can go.
type AttributeDecl struct {
	Call      optree.Node
	Variable  optree.Node
	Slot      optree.Slot
	Type      ast.Type
	TypeArg   optree.Node
	Removable bool
}

// matchAttributes recognizes the attribute import call. It only reads the
// tree.
func (f *finder) matchAttributes(call optree.Node) (AttributeDecl, bool) {
	if call.Kind() != optree.KindEnterSub || call.Flags()&optree.Special == 0 {
		return AttributeDecl{}, false
	}
	method := optree.Last(call)
	if method == nil || method.Kind() != optree.KindMethodNamed || stringValue(method) != "import" {
		return AttributeDecl{}, false
	}

	// pushmark, invocant, package, \$x, attribute..., method
	kids := optree.Kids(call)
	if len(kids) < 6 {
		return AttributeDecl{}, false
	}
	attrPackage, currPackage, makeRef := kids[1], kids[2], kids[3]
	attrs := kids[4 : len(kids)-1]

	if attrPackage.Kind() != optree.KindConst ||
		currPackage.Kind() != optree.KindConst ||
		makeRef.Kind() != optree.KindSRefGen {
		return AttributeDecl{}, false
	}

	// \$x is srefgen(ex-list(padsv))
	var lexical optree.Node
	if inner := makeRef.First(); inner != nil {
		lexical = inner.First()
	}
	if lexical == nil {
		return AttributeDecl{}, false
	}
	switch lexical.Kind() {
	case optree.KindPadSV, optree.KindPadAV, optree.KindPadHV:
	default:
		return AttributeDecl{}, false
	}

	if stringValue(attrPackage) != "attributes" {
		return AttributeDecl{}, false
	}
	for _, a := range attrs {
		if a.Kind() != optree.KindConst {
			return AttributeDecl{}, false
		}
	}

	decl := AttributeDecl{
		Call:      call,
		Variable:  lexical,
		Slot:      optree.SlotOf(lexical),
		Removable: len(attrs) == 1,
	}
	for _, a := range attrs {
		s := stringValue(a)
		f.log.Debug("checking potential type", "attribute", s)
		if t, ok := f.ctx.parseType(s); ok {
			f.log.Debug("parsed type declaration", "attribute", s, "type", t.String())
			decl.Type, decl.TypeArg = t, a
			break
		}
	}
	if decl.Type == nil {
		return AttributeDecl{}, false
	}
	return decl, true
}

// applyAttributes records decl and attaches its type to the declaration
// table.
func (f *finder) applyAttributes(decl AttributeDecl) {
	var intro optree.Node
	if decl.Variable.Private()&optree.LvalIntro != 0 {
		intro = decl.Variable
	}
	f.decls.LookupOrCreate(decl.Slot, intro).SetValueType(decl.Type)
	f.attrs = append(f.attrs, decl)
}

func stringValue(n optree.Node) string {
	v := n.Value()
	if v == nil || !v.POK {
		return ""
	}
	return v.PV
}
