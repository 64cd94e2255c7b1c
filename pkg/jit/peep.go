package jit

import (
	"fmt"

	"opjit/pkg/optree"
)

// Peep is the peephole stage: it searches o and every sibling that follows
// it, hands the result to ctx.CodeGen and then runs ctx.NextPeep on o. When
// no code generator is configured the candidates are released.
func Peep(ctx *Context, o optree.Node) error {
	if o == nil {
		return nil
	}
	log := ctx.logger()

	res := FindCandidatesSeq(ctx, o)
	log.Debug("peephole pass", "start", optree.Describe(o), "candidates", len(res.Candidates))

	var err error
	switch {
	case ctx.CodeGen != nil:
		if gerr := ctx.CodeGen.Generate(res); gerr != nil {
			err = fmt.Errorf("code generation for %s: %w", optree.Describe(o), gerr)
		}
	default:
		res.Release()
	}

	if ctx.NextPeep != nil {
		// The chained stage gets the start op, not the last sibling scanned.
		ctx.NextPeep(o)
	}
	return err
}

// Hook returns Peep bound to ctx in the shape of a host peephole stage.
// Errors from the code generator go to onError; the host keeps running its
// original ops either way.
func Hook(ctx *Context, onError func(error)) func(optree.Node) {
	return func(o optree.Node) {
		if err := Peep(ctx, o); err != nil && onError != nil {
			onError(err)
		}
	}
}
