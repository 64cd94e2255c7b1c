package ast

import (
	"fmt"
	"io"
	"strings"

	"opjit/pkg/optree"
)

// Dump writes an indented, one-term-per-line rendering of t. It is meant
// for diagnostics only.
//
//	OP '+' (
//	  V = 0
//	  C = 5 (int)
//	)
func Dump(w io.Writer, t Term) {
	dump(w, t, 0)
}

// DumpString is Dump into a string.
func DumpString(t Term) string {
	var sb strings.Builder
	Dump(&sb, t)
	return sb.String()
}

func indent(w io.Writer, lvl int) {
	io.WriteString(w, strings.Repeat("  ", lvl))
}

func dump(w io.Writer, t Term, lvl int) {
	indent(w, lvl)
	switch n := t.(type) {
	case *Constant:
		fmt.Fprintf(w, "C = %s (%s)\n", n, n.Type)
	case *Variable:
		fmt.Fprintf(w, "V = %d\n", n.Decl)
	case *VariableDeclaration:
		fmt.Fprintf(w, "D = %d (%s)\n", n.Index, n.ValueType)
	case *Op:
		fmt.Fprintf(w, "OP '%s' (\n", n.DisplayName())
		for _, kid := range n.Kids {
			dump(w, kid, lvl+1)
		}
		indent(w, lvl)
		io.WriteString(w, ")\n")
	case *Optree:
		fmt.Fprintf(w, "OPTREE = %s (starts at %s)\n", optree.Describe(n.HostNode()), optree.Describe(n.Start))
	case *NullOptree:
		fmt.Fprintf(w, "NULLOPTREE = %s\n", optree.Describe(n.HostNode()))
	case *Empty:
		io.WriteString(w, "EMPTY\n")
	case nil:
		io.WriteString(w, "<nil>\n")
	default:
		panic(fmt.Sprintf("ast: cannot dump %T", t))
	}
}
