// Package optree is a read-only view of a host interpreter's op tree.
package optree

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a read-only view of one host op. The host owns the tree; code in
// this module only ever reads it.
type Node interface {
	Kind() Kind
	Flags() Flags
	Private() Private
	// Targ is the pad slot of pad ops and the former kind of a nulled op.
	Targ() uint32
	First() Node
	Sibling() Node
	// Value is the literal carried by const and method_named ops, nil otherwise.
	Value() *Value
}

// Value is a host literal together with the representation tags the host
// recorded when it stored it.
//
//	const[iv=-42]       Value{IOK: true, IV: -42}
//	const[uv=7]         Value{IOK: true, IsUV: true, UV: 7}
//	const[nv=1.5]       Value{NOK: true, NV: 1.5}
//	const[pv="Int"]     Value{POK: true, PV: "Int"}
type Value struct {
	IOK  bool // integer slot valid
	IsUV bool // integer slot holds an unsigned value
	NOK  bool // floating point slot valid
	POK  bool // string slot valid

	IV int64
	UV uint64
	NV float64
	PV string
}

// Num returns the value coerced to a double, the way the host does when no
// numeric slot is valid.
func (v *Value) Num() float64 {
	switch {
	case v.NOK:
		return v.NV
	case v.IOK && v.IsUV:
		return float64(v.UV)
	case v.IOK:
		return float64(v.IV)
	case v.POK:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.PV), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func (v *Value) String() string {
	var parts []string
	if v.IOK {
		if v.IsUV {
			parts = append(parts, fmt.Sprintf("uv=%d", v.UV))
		} else {
			parts = append(parts, fmt.Sprintf("iv=%d", v.IV))
		}
	}
	if v.NOK {
		parts = append(parts, "nv="+strconv.FormatFloat(v.NV, 'g', -1, 64))
	}
	if v.POK {
		parts = append(parts, fmt.Sprintf("pv=%q", v.PV))
	}
	return strings.Join(parts, ", ")
}

// Op is an in-memory host op. It backs fixtures, the notation parser and
// tests; a real embedding supplies its own Node implementation.
type Op struct {
	OpKind    Kind
	OpFlags   Flags
	OpPrivate Private
	OpTarg    uint32
	Val       *Value
	Kids      []*Op

	sibling *Op
}

// NewOp builds an op and links the children's sibling chain.
func NewOp(kind Kind, kids ...*Op) *Op {
	o := &Op{OpKind: kind}
	o.SetKids(kids...)
	return o
}

// SetKids replaces the children of o and relinks their sibling chain.
func (o *Op) SetKids(kids ...*Op) {
	o.Kids = kids
	for i, k := range kids {
		k.sibling = nil
		if i+1 < len(kids) {
			k.sibling = kids[i+1]
		}
	}
}

func (o *Op) Kind() Kind       { return o.OpKind }
func (o *Op) Flags() Flags     { return o.OpFlags }
func (o *Op) Private() Private { return o.OpPrivate }
func (o *Op) Targ() uint32     { return o.OpTarg }
func (o *Op) Value() *Value    { return o.Val }

func (o *Op) First() Node {
	if len(o.Kids) == 0 {
		return nil
	}
	return o.Kids[0]
}

func (o *Op) Sibling() Node {
	if o.sibling == nil {
		return nil
	}
	return o.sibling
}

// String renders o in the notation accepted by ParseTree.
func (o *Op) String() string {
	var sb strings.Builder
	writeNotation(&sb, o)
	return sb.String()
}

func writeNotation(sb *strings.Builder, o *Op) {
	sb.WriteString(o.OpKind.String())

	var attrs []string
	if o.OpKind == KindNull && o.OpTarg != 0 {
		attrs = append(attrs, "ex="+Kind(o.OpTarg).String())
	} else if o.OpTarg != 0 {
		attrs = append(attrs, fmt.Sprintf("targ=%d", o.OpTarg))
	}
	if o.OpPrivate&LvalIntro != 0 {
		attrs = append(attrs, "intro")
	}
	if o.OpFlags&Special != 0 {
		attrs = append(attrs, "special")
	}
	if o.OpFlags&Stacked != 0 {
		attrs = append(attrs, "stacked")
	}
	if w := o.OpFlags.Want(); w != WantUnknown {
		attrs = append(attrs, "want="+w.String())
	}
	if o.Val != nil {
		if s := o.Val.String(); s != "" {
			attrs = append(attrs, s)
		}
	}
	if len(attrs) > 0 {
		sb.WriteString("[" + strings.Join(attrs, ", ") + "]")
	}

	if len(o.Kids) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, k := range o.Kids {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeNotation(sb, k)
	}
	sb.WriteByte(')')
}

// SlotOf returns the pad slot of a pad op.
func SlotOf(n Node) Slot {
	return Slot(n.Targ())
}

// Describe is a short one-line label for diagnostics: the kind plus the
// slot or former kind when there is one.
func Describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind() {
	case KindNull:
		if n.Targ() != 0 {
			return "null (ex-" + Kind(n.Targ()).String() + ")"
		}
	case KindPadSV, KindPadAV, KindPadHV:
		return fmt.Sprintf("%s[targ=%d]", n.Kind(), n.Targ())
	}
	return n.Kind().String()
}
