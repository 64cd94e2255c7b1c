package ast

import "fmt"

// Free releases t and every term it owns and returns how many terms were
// released. Declarations are shared with the table and are never released;
// a Variable only points at one. Releasing a term twice panics.
func Free(t Term) int {
	if t == nil {
		return 0
	}
	if _, ok := t.(*VariableDeclaration); ok {
		return 0
	}

	b := t.base()
	if b.freed {
		panic(fmt.Sprintf("ast: %s term %s released twice", t.Kind(), t))
	}

	n := 0
	if op, ok := t.(*Op); ok {
		for _, kid := range op.Kids {
			n += Free(kid)
		}
		op.Kids = nil
	}
	b.freed = true
	return n + 1
}

// FreeAll releases every term in ts.
func FreeAll(ts []Term) int {
	n := 0
	for _, t := range ts {
		n += Free(t)
	}
	return n
}

// Walk calls fn for t and then for each owned descendant, pre-order.
func Walk(t Term, fn func(Term)) {
	if t == nil {
		return
	}
	fn(t)
	if op, ok := t.(*Op); ok {
		for _, kid := range op.Kids {
			Walk(kid, fn)
		}
	}
}
