package jit

import (
	"fmt"

	"opjit/pkg/optree"
)

// UnsupportedError reports that a subtree cannot be expressed as terms. The
// host keeps executing the original ops for it.
type UnsupportedError struct {
	Node   optree.Node
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", optree.Describe(e.Node), e.Reason)
}

// InvariantError is the panic payload raised when an op reaches the
// translator in a shape its tables do not cover. It means the kind tables
// disagree with each other and is never recovered inside this package.
type InvariantError struct {
	Node optree.Node
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated at %s: %s", optree.Describe(e.Node), e.Msg)
}

func invariant(n optree.Node, format string, args ...any) {
	panic(&InvariantError{Node: n, Msg: fmt.Sprintf(format, args...)})
}
