package ast

import (
	"fmt"
	"strings"

	"opjit/pkg/optree"
)

// TypeID tags the value types known to the code generator.
type TypeID int

const (
	TypeUnspecified TypeID = iota
	TypeAny
	TypeSV
	TypeGV
	TypeOpaque
	TypeArray
	TypeHash
	TypeString
	TypeDouble
	TypeInt
	TypeUint
)

var typeIDNames = [...]string{
	TypeUnspecified: "Unspecified",
	TypeAny:         "Any",
	TypeSV:          "Scalar",
	TypeGV:          "Glob",
	TypeOpaque:      "Opaque",
	TypeArray:       "Array",
	TypeHash:        "Hash",
	TypeString:      "String",
	TypeDouble:      "Double",
	TypeInt:         "Int",
	TypeUint:        "UnsignedInt",
}

func (id TypeID) String() string {
	if id >= 0 && int(id) < len(typeIDNames) {
		return typeIDNames[id]
	}
	return fmt.Sprintf("TypeID(%d)", int(id))
}

// Type is the declared or inferred type of a value.
type Type interface {
	Tag() TypeID
	Equal(other Type) bool
	IsScalar() bool
	IsUnspecified() bool
	IsInteger() bool
	IsNumeric() bool
	String() string
}

// Scalar is a single-value type.
type Scalar struct {
	ID TypeID
}

func (s *Scalar) Tag() TypeID { return s.ID }

func (s *Scalar) Equal(other Type) bool {
	o, ok := other.(*Scalar)
	return ok && o.ID == s.ID
}

func (s *Scalar) IsScalar() bool      { return true }
func (s *Scalar) IsUnspecified() bool { return s.ID == TypeUnspecified }
func (s *Scalar) IsInteger() bool     { return s.ID == TypeInt || s.ID == TypeUint }
func (s *Scalar) IsNumeric() bool     { return s.IsInteger() || s.ID == TypeDouble }
func (s *Scalar) String() string      { return s.ID.String() }

// Array is a list of Elem values.
type Array struct {
	Elem Type
}

func (a *Array) Tag() TypeID { return TypeArray }

func (a *Array) Equal(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Elem.Equal(o.Elem)
}

func (a *Array) IsScalar() bool      { return false }
func (a *Array) IsUnspecified() bool { return false }
func (a *Array) IsInteger() bool     { return false }
func (a *Array) IsNumeric() bool     { return false }
func (a *Array) String() string      { return "Array[" + a.Elem.String() + "]" }

// Hash maps strings to Elem values.
type Hash struct {
	Elem Type
}

func (h *Hash) Tag() TypeID { return TypeHash }

func (h *Hash) Equal(other Type) bool {
	o, ok := other.(*Hash)
	return ok && h.Elem.Equal(o.Elem)
}

func (h *Hash) IsScalar() bool      { return false }
func (h *Hash) IsUnspecified() bool { return false }
func (h *Hash) IsInteger() bool     { return false }
func (h *Hash) IsNumeric() bool     { return false }
func (h *Hash) String() string      { return "Hash[" + h.Elem.String() + "]" }

// Unspecified is the type given to declarations nobody annotated.
func Unspecified() Type { return &Scalar{ID: TypeUnspecified} }

var scalarNames = map[string]TypeID{
	"Any":         TypeAny,
	"Scalar":      TypeSV,
	"Opaque":      TypeOpaque,
	"String":      TypeString,
	"Double":      TypeDouble,
	"Int":         TypeInt,
	"UnsignedInt": TypeUint,
}

// ParseType parses an attribute type annotation such as "Int" or
// "Array[Double]". ok is false when str is not a type, which is the normal
// outcome for attributes that carry something else.
func ParseType(str string) (t Type, ok bool) {
	str = strings.TrimSpace(str)
	if id, found := scalarNames[str]; found {
		return &Scalar{ID: id}, true
	}
	for _, prefix := range []string{"Array[", "Hash["} {
		if !strings.HasPrefix(str, prefix) || !strings.HasSuffix(str, "]") {
			continue
		}
		elem, ok := ParseType(str[len(prefix) : len(str)-1])
		if !ok {
			return nil, false
		}
		if prefix == "Array[" {
			return &Array{Elem: elem}, true
		}
		return &Hash{Elem: elem}, true
	}
	return nil, false
}

// TypeLookup supplies the declared type of a lexical slot, if any.
type TypeLookup interface {
	DeclaredType(slot optree.Slot) (Type, bool)
}

// TypeMap is a TypeLookup backed by a map.
type TypeMap map[optree.Slot]Type

func (m TypeMap) DeclaredType(slot optree.Slot) (Type, bool) {
	t, ok := m[slot]
	return t, ok
}
