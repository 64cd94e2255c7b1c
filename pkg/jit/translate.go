package jit

import (
	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

// rootEligible holds the kinds a candidate may start at. Literals, plain
// reads and logical and/or are only translated inside a larger candidate.
var rootEligible = map[optree.Kind]bool{
	optree.KindAdd:        true,
	optree.KindSubtract:   true,
	optree.KindMultiply:   true,
	optree.KindDivide:     true,
	optree.KindModulo:     true,
	optree.KindPow:        true,
	optree.KindAtan2:      true,
	optree.KindNegate:     true,
	optree.KindInt:        true,
	optree.KindAbs:        true,
	optree.KindSqrt:       true,
	optree.KindSin:        true,
	optree.KindCos:        true,
	optree.KindExp:        true,
	optree.KindLog:        true,
	optree.KindLeftShift:  true,
	optree.KindRightShift: true,
	optree.KindBitAnd:     true,
	optree.KindBitOr:      true,
	optree.KindBitXor:     true,
	optree.KindEq:         true,
	optree.KindNe:         true,
	optree.KindLt:         true,
	optree.KindLe:         true,
	optree.KindGt:         true,
	optree.KindGe:         true,
	optree.KindNot:        true,
	optree.KindCondExpr:   true,
	optree.KindSAssign:    true,
	optree.KindOrAssign:   true,
	optree.KindAndAssign:  true,
	optree.KindDOrAssign:  true,
}

// RootEligible reports whether a candidate may start at an op of kind k.
func RootEligible(k optree.Kind) bool { return rootEligible[k] }

var unops = map[optree.Kind]ast.OpCode{
	optree.KindNegate:  ast.UnopNegate,
	optree.KindSin:     ast.UnopSin,
	optree.KindCos:     ast.UnopCos,
	optree.KindAbs:     ast.UnopAbs,
	optree.KindSqrt:    ast.UnopSqrt,
	optree.KindLog:     ast.UnopLog,
	optree.KindExp:     ast.UnopExp,
	optree.KindInt:     ast.UnopInt,
	optree.KindNot:     ast.UnopBoolNot,
	optree.KindPreInc:  ast.UnopPreInc,
	optree.KindPreDec:  ast.UnopPreDec,
	optree.KindPostInc: ast.UnopPostInc,
	optree.KindPostDec: ast.UnopPostDec,
	// no complement: the host's ~ depends on whether the operand is a string
}

var binops = map[optree.Kind]ast.OpCode{
	optree.KindAdd:        ast.BinopAdd,
	optree.KindSubtract:   ast.BinopSubtract,
	optree.KindMultiply:   ast.BinopMultiply,
	optree.KindDivide:     ast.BinopDivide,
	optree.KindModulo:     ast.BinopModulo,
	optree.KindAtan2:      ast.BinopAtan2,
	optree.KindPow:        ast.BinopPow,
	optree.KindLeftShift:  ast.BinopLeftShift,
	optree.KindRightShift: ast.BinopRightShift,
	optree.KindBitAnd:     ast.BinopBitwiseAnd,
	optree.KindBitOr:      ast.BinopBitwiseOr,
	optree.KindBitXor:     ast.BinopBitwiseXor,
	optree.KindEq:         ast.BinopEq,
	optree.KindNe:         ast.BinopNe,
	optree.KindLt:         ast.BinopLt,
	optree.KindLe:         ast.BinopLe,
	optree.KindGt:         ast.BinopGt,
	optree.KindGe:         ast.BinopGe,
	optree.KindAnd:        ast.BinopBoolAnd,
	optree.KindOr:         ast.BinopBoolOr,
	optree.KindDOr:        ast.BinopDefinedOr,
}

var compoundAssigns = map[optree.Kind]ast.OpCode{
	optree.KindOrAssign:  ast.BinopBoolOr,
	optree.KindAndAssign: ast.BinopBoolAnd,
	optree.KindDOrAssign: ast.BinopDefinedOr,
}

// barriers can never be handed to a candidate as an opaque value: they
// are statements or transfer control.
var barriers = map[optree.Kind]bool{
	optree.KindNextState: true,
	optree.KindLineSeq:   true,
	optree.KindEnter:     true,
	optree.KindLeave:     true,
	optree.KindScope:     true,
	optree.KindLeaveSub:  true,
	optree.KindReturn:    true,
	optree.KindEnterLoop: true,
	optree.KindLeaveLoop: true,
	optree.KindNext:      true,
	optree.KindLast:      true,
	optree.KindRedo:      true,
	optree.KindGoto:      true,
	optree.KindDie:       true,
	optree.KindPushMark:  true,
}

// representable reports whether the translator has a case for n.
func (f *finder) representable(n optree.Node) bool {
	k := n.Kind()
	if rootEligible[k] {
		return true
	}
	switch k {
	case optree.KindConst, optree.KindPadSV, optree.KindStub, optree.KindList,
		optree.KindAnd, optree.KindOr, optree.KindDOr,
		optree.KindRand, optree.KindSrand,
		optree.KindPreInc, optree.KindPreDec, optree.KindPostInc, optree.KindPostDec:
		return true
	case optree.KindNull:
		if optree.Kind(n.Targ()) == optree.KindList {
			return true
		}
		// TODO: check the pass-through against the host for ex-rv2sv and
		// ex-aelem nulls, which carry a non-zero targ and are opaque today.
		return f.ctx.Options.PassThroughNull && n.Targ() == 0 && len(operands(n)) == 1
	}
	return false
}

// operands returns the children of n that carry values; pushmark only
// delimits argument lists on the host stack.
func operands(n optree.Node) []optree.Node {
	var kids []optree.Node
	for kid := n.First(); kid != nil; kid = kid.Sibling() {
		if kid.Kind() == optree.KindPushMark {
			continue
		}
		kids = append(kids, kid)
	}
	return kids
}

// releaseTerms frees the operands built before a sibling failed.
var releaseTerms = ast.FreeAll

// translate converts the subtree rooted at n into exactly one term, or
// fails with an *UnsupportedError having released everything it built.
func (f *finder) translate(n optree.Node) (ast.Term, error) {
	if n.Kind() == optree.KindEnterSub {
		if decl, ok := f.matchAttributes(n); ok {
			f.applyAttributes(decl)
			if decl.Removable {
				return ast.NewNullOptree(n), nil
			}
			// The remaining attributes still have to be applied at run time.
			return ast.NewOptree(n), nil
		}
	}

	if !f.representable(n) {
		return f.opaque(n)
	}

	kids := operands(n)
	if len(kids) == 0 {
		return f.translateLeaf(n), nil
	}

	terms := make([]ast.Term, 0, len(kids))
	for i, kid := range kids {
		f.log.Debug("translating operand", "op", optree.Describe(n), "index", i, "kid", optree.Describe(kid))
		t, err := f.translate(kid)
		if err != nil {
			releaseTerms(terms)
			return nil, err
		}
		terms = append(terms, t)
	}
	return f.build(n, terms), nil
}

// opaque wraps an op with no representation. Candidates inside it are
// searched for first so they run before the enclosing candidate.
func (f *finder) opaque(n optree.Node) (ast.Term, error) {
	if barriers[n.Kind()] {
		return nil, &UnsupportedError{Node: n, Reason: "control flow or statement op"}
	}
	switch n.Flags().Want() {
	case optree.ContextList:
		return nil, &UnsupportedError{Node: n, Reason: "list context cannot be passed as one value"}
	case optree.ContextVoid:
		return nil, &UnsupportedError{Node: n, Reason: "void context produces no value"}
	}

	f.log.Debug("cannot represent op, emitting optree term", "op", optree.Describe(n))
	f.search(n)
	return ast.NewOptree(n), nil
}

// translateLeaf handles representable ops without operands.
func (f *finder) translateLeaf(n optree.Node) ast.Term {
	switch n.Kind() {
	case optree.KindConst:
		return ast.NewConstant(n, n.Value())
	case optree.KindPadSV:
		if n.Private()&optree.LvalIntro != 0 {
			return f.decls.LookupOrCreate(optree.SlotOf(n), n)
		}
		return ast.NewVariable(n, f.decls.LookupOrCreate(optree.SlotOf(n), nil))
	case optree.KindStub:
		if n.Flags().Want() == optree.ContextScalar {
			return ast.NewUndef(n)
		}
		return ast.NewEmpty(n)
	case optree.KindList, optree.KindNull:
		return ast.NewListop(n, ast.ListopList, nil)
	case optree.KindRand:
		return ast.NewListop(n, ast.ListopRand, nil)
	case optree.KindSrand:
		return ast.NewListop(n, ast.ListopSrand, nil)
	}
	invariant(n, "unsupported nullary op")
	return nil
}

// build combines already translated operands into the term for n.
func (f *finder) build(n optree.Node, terms []ast.Term) ast.Term {
	k := n.Kind()

	if code, ok := unops[k]; ok {
		requireArity(n, terms, 1)
		return ast.NewUnop(n, code, terms[0])
	}
	if code, ok := binops[k]; ok {
		requireArity(n, terms, 2)
		return ast.NewBinop(n, code, terms[0], terms[1])
	}
	if code, ok := compoundAssigns[k]; ok {
		return f.compoundAssign(n, code, terms)
	}

	switch k {
	case optree.KindSAssign:
		// The host evaluates the value first; the term lists the target first.
		requireArity(n, terms, 2)
		return ast.NewBinop(n, ast.BinopSAssign, terms[1], terms[0])
	case optree.KindCondExpr:
		requireArity(n, terms, 3)
		return ast.NewTernary(n, terms[0], terms[1], terms[2])
	case optree.KindRand, optree.KindSrand:
		// The argument is optional.
		if len(terms) > 1 {
			invariant(n, "%s takes at most one operand, got %d", k, len(terms))
		}
		code := ast.ListopRand
		if k == optree.KindSrand {
			code = ast.ListopSrand
		}
		return ast.NewListop(n, code, terms)
	case optree.KindList:
		return flatten(n, terms)
	case optree.KindNull:
		if optree.Kind(n.Targ()) == optree.KindList {
			return flatten(n, terms)
		}
		if len(terms) == 1 && n.Targ() == 0 {
			return terms[0]
		}
	}
	invariant(n, "no translation for %s with %d operands", k, len(terms))
	return nil
}

// flatten collapses a single-element list to its element.
func flatten(n optree.Node, terms []ast.Term) ast.Term {
	if len(terms) == 1 {
		return terms[0]
	}
	return ast.NewListop(n, ast.ListopList, terms)
}

func requireArity(n optree.Node, terms []ast.Term, want int) {
	if len(terms) != want {
		invariant(n, "%s expects %d operands, got %d", n.Kind(), want, len(terms))
	}
}

// compoundAssign rewrites "$x ||= v", which the host builds as
// orassign(padsv $x, sassign(v, padsv $x)), into one conditional binop in
// assignment form. The inner assignment term and its redundant target are
// released.
func (f *finder) compoundAssign(n optree.Node, code ast.OpCode, terms []ast.Term) ast.Term {
	requireArity(n, terms, 2)
	assign, ok := terms[1].(*ast.Op)
	if !ok || assign.Code != ast.BinopSAssign || len(assign.Kids) != 2 {
		invariant(n, "compound assignment expects an sassign operand, got %s", terms[1])
	}
	target, value := assign.Kids[0], assign.Kids[1]
	if !sameSlot(terms[0], target) {
		invariant(n, "compound assignment stores to %s but tests %s", target, terms[0])
	}

	assign.Kids = []ast.Term{target}
	ast.Free(assign)

	op := ast.NewBinop(n, code, terms[0], value)
	op.AssignForm = true
	return op
}

// sameSlot reports whether two terms name the same declaration.
func sameSlot(a, b ast.Term) bool {
	ia, ok := declIndex(a)
	if !ok {
		return false
	}
	ib, ok := declIndex(b)
	return ok && ia == ib
}

func declIndex(t ast.Term) (int, bool) {
	switch v := t.(type) {
	case *ast.Variable:
		return v.Decl, true
	case *ast.VariableDeclaration:
		return v.Index, true
	}
	return 0, false
}
