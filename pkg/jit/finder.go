package jit

import (
	"log/slog"

	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

// Result is the outcome of one whole-function pass.
type Result struct {
	// Candidates are the translated subtrees in host execution order.
	Candidates []ast.Term
	// Declarations is shared by every candidate.
	Declarations *ast.Declarations
	// Attributes lists the attribute declarations that were recognized.
	Attributes []AttributeDecl
}

// Release frees every candidate. Use it when no code generator takes them.
func (r *Result) Release() {
	ast.FreeAll(r.Candidates)
	r.Candidates = nil
}

// finder holds the state of one pass: the candidates found so far and the
// declaration table they share.
type finder struct {
	ctx        *Context
	log        *slog.Logger
	decls      *ast.Declarations
	candidates []ast.Term
	attrs      []AttributeDecl
}

func newFinder(ctx *Context) *finder {
	return &finder{
		ctx:   ctx,
		log:   ctx.logger(),
		decls: ast.NewDeclarations(ctx.Types),
	}
}

func (f *finder) result() *Result {
	return &Result{Candidates: f.candidates, Declarations: f.decls, Attributes: f.attrs}
}

// FindCandidates walks the function body rooted at root and returns the
// maximal translatable subtrees. It panics with *InvariantError if the tree
// holds an op shape the translator's tables claim to cover but do not.
func FindCandidates(ctx *Context, root optree.Node) *Result {
	f := newFinder(ctx)
	f.search(root)
	f.log.Debug("candidate search finished", "candidates", len(f.candidates), "declarations", f.decls.Len())
	return f.result()
}

// FindCandidatesSeq treats root and every sibling after it as one function
// body, sharing a single declaration table.
func FindCandidatesSeq(ctx *Context, root optree.Node) *Result {
	f := newFinder(ctx)
	for n := root; n != nil; n = n.Sibling() {
		f.search(n)
	}
	return f.result()
}

func (f *finder) search(root optree.Node) {
	optree.Walk(root, f.visit)
}

func (f *finder) visit(n, parent optree.Node) optree.Visit {
	f.log.Debug("considering op", "op", optree.Describe(n))

	if n.Kind() == optree.KindEnterSub {
		if decl, ok := f.matchAttributes(n); ok {
			f.applyAttributes(decl)
			if decl.Removable {
				f.candidates = append(f.candidates, ast.NewNullOptree(n))
			}
			return optree.Skip
		}
		if !f.ctx.Options.DescendIntoCalls {
			return optree.Skip
		}
		return optree.Continue
	}

	if !rootEligible[n.Kind()] {
		return optree.Continue
	}
	if t, ok := f.attempt(n); ok {
		f.candidates = append(f.candidates, t)
		return optree.Skip
	}
	return optree.Continue
}

// mark is a position in the pass's output, used to undo a failed attempt.
type mark struct {
	candidates int
	attrs      int
}

func (f *finder) mark() mark {
	return mark{candidates: len(f.candidates), attrs: len(f.attrs)}
}

// rollback drops everything found after m. Nested candidates discovered
// inside opaque regions of a failed attempt are found again when the walk
// descends into the failed op's children.
func (f *finder) rollback(m mark) {
	ast.FreeAll(f.candidates[m.candidates:])
	f.candidates = f.candidates[:m.candidates]
	f.attrs = f.attrs[:m.attrs]
}

// attempt translates the subtree rooted at n as one candidate.
func (f *finder) attempt(n optree.Node) (ast.Term, bool) {
	f.log.Debug("attempting translation", "op", optree.Describe(n))
	m := f.mark()
	t, err := f.translate(n)
	if err != nil {
		f.rollback(m)
		f.log.Debug("candidate rejected", "op", optree.Describe(n), "reason", err.Error())
		return nil, false
	}
	return t, true
}
