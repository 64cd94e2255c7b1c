package ast

import (
	"fmt"
	"strings"

	"opjit/pkg/optree"
)

// Declarations maps lexical slots to the single VariableDeclaration shared by
// every term that mentions the slot. Ordinals are handed out in discovery
// order. There is no removal: the table lives for one whole-function pass.
type Declarations struct {
	bySlot map[optree.Slot]*VariableDeclaration
	order  []*VariableDeclaration
	types  TypeLookup
}

// NewDeclarations builds an empty table. types may be nil.
func NewDeclarations(types TypeLookup) *Declarations {
	return &Declarations{
		bySlot: make(map[optree.Slot]*VariableDeclaration),
		types:  types,
	}
}

// LookupOrCreate returns the declaration of slot, creating it with the next
// ordinal on first sight. intro is the declaring op when the caller is
// looking at one and nil for a plain read; a declaration first created from
// a read keeps a nil back-link.
func (d *Declarations) LookupOrCreate(slot optree.Slot, intro optree.Node) *VariableDeclaration {
	if decl, ok := d.bySlot[slot]; ok {
		return decl
	}

	decl := &VariableDeclaration{
		termBase:  termBase{node: intro},
		Index:     len(d.order),
		Slot:      slot,
		ValueType: Unspecified(),
	}
	if d.types != nil {
		if t, ok := d.types.DeclaredType(slot); ok && t != nil {
			decl.ValueType = t
		}
	}
	d.bySlot[slot] = decl
	d.order = append(d.order, decl)
	return decl
}

// Lookup returns the declaration of slot and whether it exists.
func (d *Declarations) Lookup(slot optree.Slot) (*VariableDeclaration, bool) {
	decl, ok := d.bySlot[slot]
	return decl, ok
}

// At returns the declaration with the given ordinal.
func (d *Declarations) At(index int) *VariableDeclaration {
	if index < 0 || index >= len(d.order) {
		panic(fmt.Sprintf("ast: declaration index %d out of range [0,%d)", index, len(d.order)))
	}
	return d.order[index]
}

// Resolve returns the declaration a Variable refers to.
func (d *Declarations) Resolve(v *Variable) *VariableDeclaration {
	return d.At(v.Decl)
}

func (d *Declarations) Len() int { return len(d.order) }

// All returns the declarations in ordinal order.
func (d *Declarations) All() []*VariableDeclaration {
	out := make([]*VariableDeclaration, len(d.order))
	copy(out, d.order)
	return out
}

// String returns an ordinal-ordered dump of the table.
func (d *Declarations) String() string {
	var sb strings.Builder
	if len(d.order) == 0 {
		sb.WriteString("Declarations: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Declarations:\n")
	for _, decl := range d.order {
		intro := "read"
		if decl.Introduced() {
			intro = "intro"
		}
		fmt.Fprintf(&sb, "  V%-4d  slot %-4d  %-5s  type %s\n", decl.Index, decl.Slot, intro, decl.ValueType)
	}
	return sb.String()
}
