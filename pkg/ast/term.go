package ast

import (
	"fmt"
	"strconv"
	"strings"

	"opjit/pkg/optree"
)

// TermKind tags the concrete variant of a Term.
type TermKind int

const (
	TermConstant TermKind = iota
	TermVariable
	TermVariableDeclaration
	TermOp
	TermOptree
	TermNullOptree
	TermEmpty
)

func (k TermKind) String() string {
	switch k {
	case TermConstant:
		return "constant"
	case TermVariable:
		return "variable"
	case TermVariableDeclaration:
		return "variable declaration"
	case TermOp:
		return "op"
	case TermOptree:
		return "optree"
	case TermNullOptree:
		return "null optree"
	case TermEmpty:
		return "empty"
	}
	return fmt.Sprintf("TermKind(%d)", int(k))
}

// Term is a node of the intermediate representation. Every term except a
// VariableDeclaration is owned by exactly one parent (or by the candidate
// list when it is a root).
type Term interface {
	Kind() TermKind
	// HostNode is the host op the term was built from; it may be nil for
	// synthesized terms.
	HostNode() optree.Node
	String() string
	base() *termBase
}

type termBase struct {
	node  optree.Node
	freed bool
}

func (b *termBase) HostNode() optree.Node { return b.node }
func (b *termBase) base() *termBase        { return b }

// Freed reports whether Free has released t.
func Freed(t Term) bool { return t.base().freed }

//  Constants

// ConstKind is the classified representation of a Constant.
type ConstKind int

const (
	ConstDouble ConstKind = iota
	ConstInt
	ConstUint
	ConstString
	ConstUndef
)

func (k ConstKind) String() string {
	switch k {
	case ConstDouble:
		return "double"
	case ConstInt:
		return "int"
	case ConstUint:
		return "uint"
	case ConstString:
		return "string"
	case ConstUndef:
		return "undef"
	}
	return fmt.Sprintf("ConstKind(%d)", int(k))
}

// Constant is a literal whose representation was decided once, from the
// host value's tags, when it was built.
//
//	const[iv=-42]   Constant{Type: ConstInt, Int: -42}
//	const[nv=0.5]   Constant{Type: ConstDouble, Double: 0.5}
type Constant struct {
	termBase
	Type   ConstKind
	Double float64
	Int    int64
	Uint   uint64
	Str    string
}

// NewConstant classifies v: an unsigned integer beats a signed one, integers
// beat doubles, doubles beat strings. A value carrying none of those tags
// becomes a double holding its numeric coercion.
func NewConstant(node optree.Node, v *optree.Value) *Constant {
	c := &Constant{termBase: termBase{node: node}}
	switch {
	case v == nil:
		c.Type = ConstDouble
	case v.IOK && v.IsUV:
		c.Type, c.Uint = ConstUint, v.UV
	case v.IOK:
		c.Type, c.Int = ConstInt, v.IV
	case v.NOK:
		c.Type, c.Double = ConstDouble, v.NV
	case v.POK:
		c.Type, c.Str = ConstString, v.PV
	default:
		c.Type, c.Double = ConstDouble, v.Num()
	}
	return c
}

// NewUndef builds the explicit undefined value.
func NewUndef(node optree.Node) *Constant {
	return &Constant{termBase: termBase{node: node}, Type: ConstUndef}
}

func NewIntConstant(node optree.Node, i int64) *Constant {
	return &Constant{termBase: termBase{node: node}, Type: ConstInt, Int: i}
}

func NewDoubleConstant(node optree.Node, d float64) *Constant {
	return &Constant{termBase: termBase{node: node}, Type: ConstDouble, Double: d}
}

func (*Constant) Kind() TermKind { return TermConstant }

// ValueType is the scalar type matching the constant's representation.
func (c *Constant) ValueType() Type {
	switch c.Type {
	case ConstInt:
		return &Scalar{ID: TypeInt}
	case ConstUint:
		return &Scalar{ID: TypeUint}
	case ConstString:
		return &Scalar{ID: TypeString}
	case ConstUndef:
		return &Scalar{ID: TypeSV}
	}
	return &Scalar{ID: TypeDouble}
}

func (c *Constant) String() string {
	switch c.Type {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstUint:
		return strconv.FormatUint(c.Uint, 10) + "u"
	case ConstString:
		return strconv.Quote(c.Str)
	case ConstUndef:
		return "undef"
	}
	return strconv.FormatFloat(c.Double, 'g', -1, 64)
}

//  Variables

// VariableDeclaration identifies one lexical slot. It is shared: the
// declaration table owns it and any number of terms may point at it.
type VariableDeclaration struct {
	termBase
	Index     int // ordinal, in order of first discovery
	Slot      optree.Slot
	ValueType Type
}

func (*VariableDeclaration) Kind() TermKind { return TermVariableDeclaration }

// SetValueType replaces the declared type.
func (d *VariableDeclaration) SetValueType(t Type) { d.ValueType = t }

// Introduced reports whether the declaring op is known. It is false when
// the slot was first met through a plain read.
func (d *VariableDeclaration) Introduced() bool { return d.node != nil }

func (d *VariableDeclaration) String() string {
	return fmt.Sprintf("my V%d", d.Index)
}

// Variable is a read of a declared variable. It refers to the declaration by
// ordinal index instead of owning it.
type Variable struct {
	termBase
	Decl int
}

func NewVariable(node optree.Node, decl *VariableDeclaration) *Variable {
	return &Variable{termBase: termBase{node: node}, Decl: decl.Index}
}

func (*Variable) Kind() TermKind    { return TermVariable }
func (v *Variable) String() string { return fmt.Sprintf("V%d", v.Decl) }

//  Operations

// Op applies Code to Kids, which it owns.
type Op struct {
	termBase
	Code OpCode
	Kids []Term
	// AssignForm marks a conditional operator rewritten from a compound
	// assignment such as "$x ||= 5": the result is stored into Kids[0].
	AssignForm bool
}

func (*Op) Kind() TermKind { return TermOp }

// NewUnop builds a one-operand op. Arity is guaranteed by the host grammar,
// so a mismatch panics.
func NewUnop(node optree.Node, code OpCode, kid Term) *Op {
	if code.Class() != ClassUnop {
		panic(fmt.Sprintf("ast: %s is a %s, not a unop", code, code.Class()))
	}
	return &Op{termBase: termBase{node: node}, Code: code, Kids: []Term{kid}}
}

// NewBinop builds a two-operand op.
func NewBinop(node optree.Node, code OpCode, left, right Term) *Op {
	if code.Class() != ClassBinop {
		panic(fmt.Sprintf("ast: %s is a %s, not a binop", code, code.Class()))
	}
	return &Op{termBase: termBase{node: node}, Code: code, Kids: []Term{left, right}}
}

// NewListop builds a variable-arity op. The ternary takes exactly three
// operands and rand/srand at most one.
func NewListop(node optree.Node, code OpCode, kids []Term) *Op {
	if code.Class() != ClassListop {
		panic(fmt.Sprintf("ast: %s is a %s, not a listop", code, code.Class()))
	}
	switch code {
	case ListopTernary:
		if len(kids) != 3 {
			panic(fmt.Sprintf("ast: ?: takes 3 operands, got %d", len(kids)))
		}
	case ListopRand, ListopSrand:
		if len(kids) > 1 {
			panic(fmt.Sprintf("ast: %s takes at most 1 operand, got %d", code, len(kids)))
		}
	}
	return &Op{termBase: termBase{node: node}, Code: code, Kids: kids}
}

// NewTernary builds cond ? then : otherwise.
func NewTernary(node optree.Node, cond, then, otherwise Term) *Op {
	return NewListop(node, ListopTernary, []Term{cond, then, otherwise})
}

// DisplayName is the operator name, with "=" appended for the compound
// assignment form ("||=").
func (o *Op) DisplayName() string {
	if o.AssignForm {
		return o.Code.Name() + "="
	}
	return o.Code.Name()
}

func (o *Op) String() string {
	switch len(o.Kids) {
	case 1:
		if o.Code.Class() == ClassUnop {
			return fmt.Sprintf("(%s %s)", o.DisplayName(), o.Kids[0])
		}
	case 2:
		if o.Code.Class() == ClassBinop {
			return fmt.Sprintf("(%s %s %s)", o.Kids[0], o.DisplayName(), o.Kids[1])
		}
	}
	parts := make([]string, len(o.Kids))
	for i, k := range o.Kids {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s(%s)", o.DisplayName(), strings.Join(parts, ", "))
}

//  Host regions

// Optree wraps a region of the host tree that has no representation. The
// host keeps ownership; the region is executed as-is, starting at Start.
type Optree struct {
	termBase
	Start optree.Node
}

func NewOptree(root optree.Node) *Optree {
	return &Optree{termBase: termBase{node: root}, Start: optree.FirstExecuted(root)}
}

func (*Optree) Kind() TermKind    { return TermOptree }
func (t *Optree) String() string { return "optree(" + optree.Describe(t.node) + ")" }

// NullOptree marks a host region that compiles to nothing, such as an
// attribute declaration whose every argument was consumed.
type NullOptree struct {
	termBase
}

func NewNullOptree(root optree.Node) *NullOptree {
	return &NullOptree{termBase: termBase{node: root}}
}

func (*NullOptree) Kind() TermKind    { return TermNullOptree }
func (t *NullOptree) String() string { return "nulloptree(" + optree.Describe(t.node) + ")" }

// Empty is the absence of a value in list (or undecided) context. It is
// not a constant: it contributes no element at all.
type Empty struct {
	termBase
}

func NewEmpty(node optree.Node) *Empty {
	return &Empty{termBase: termBase{node: node}}
}

func (*Empty) Kind() TermKind  { return TermEmpty }
func (*Empty) String() string { return "empty" }
