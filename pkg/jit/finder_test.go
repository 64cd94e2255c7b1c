package jit

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

func find(t *testing.T, src string) *Result {
	t.Helper()
	return FindCandidates(NewContext(Defaults()), optree.MustParse(src))
}

func candidateStrings(res *Result) []string {
	out := make([]string, len(res.Candidates))
	for i, c := range res.Candidates {
		out[i] = c.String()
	}
	return out
}

func TestFindCandidates(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "Single Expression",
			src:  "add(padsv[targ=1], const[iv=5])",
			want: []string{"(V0 + 5)"},
		},
		{
			name: "Literal Alone Is Not A Candidate",
			src:  "lineseq(nextstate, const[iv=5], padsv[targ=1])",
			want: []string{},
		},
		{
			name: "Logical Or Alone Is Not A Candidate",
			src:  "or(padsv[targ=1], padsv[targ=2])",
			want: []string{},
		},
		{
			name: "Logical Or Inside Expression",
			src:  "not(or(padsv[targ=1], padsv[targ=2]))",
			want: []string{"(! (V0 || V1))"},
		},
		{
			name: "Discovery Order Follows Execution",
			src: `lineseq(
				nextstate,
				sassign(add(padsv[targ=1], const[iv=1]), padsv[targ=2, intro]),
				nextstate,
				sassign(multiply(padsv[targ=2], const[iv=3]), padsv[targ=3, intro]))`,
			want: []string{"(my V1 = (V0 + 1))", "(my V2 = (V1 * 3))"},
		},
		{
			name: "Ternary",
			src:  "cond_expr(gt(padsv[targ=1], const[iv=0]), padsv[targ=1], negate(padsv[targ=1]))",
			want: []string{"?:((V0 > 0), V0, (unary - V0))"},
		},
		{
			name: "Scalar Stub Is Undef",
			src:  "cond_expr(padsv[targ=1], const[iv=1], stub[want=scalar])",
			want: []string{"?:(V0, 1, undef)"},
		},
		{
			name: "List Stub Is Empty",
			src:  "cond_expr(padsv[targ=1], const[iv=1], stub[want=list])",
			want: []string{"?:(V0, 1, empty)"},
		},
		{
			name: "Undecided Stub Is Empty",
			src:  "cond_expr(padsv[targ=1], const[iv=1], stub)",
			want: []string{"?:(V0, 1, empty)"},
		},
		{
			name: "Single Element List Flattens",
			src:  "add(null[ex=list](const[iv=2]), const[iv=3])",
			want: []string{"(2 + 3)"},
		},
		{
			name: "Pushmark Is Skipped",
			src:  "sassign(list(pushmark, const[iv=1]), padsv[targ=1])",
			want: []string{"(V0 = 1)"},
		},
		{
			name: "Multi Element List",
			src:  "sassign(list(pushmark, const[iv=1], const[nv=2.5]), padsv[targ=1])",
			want: []string{"(V0 = list(1, 2.5))"},
		},
		{
			name: "Empty Ex List",
			src:  "sassign(null[ex=list], padsv[targ=1])",
			want: []string{"(V0 = list())"},
		},
		{
			name: "Rand Without Argument",
			src:  "add(rand, const[iv=1])",
			want: []string{"(rand() + 1)"},
		},
		{
			name: "Rand With Argument",
			src:  "multiply(rand(const[iv=10]), srand)",
			want: []string{"(rand(10) * srand())"},
		},
		{
			name: "Increments",
			src:  "add(preinc(padsv[targ=1]), postdec(padsv[targ=2]))",
			want: []string{"((++ (pre) V0) + (-- (post) V1))"},
		},
		{
			name: "Opaque Child In Scalar Context",
			src:  `add(padsv[targ=1], concat(padsv[targ=2], const[pv="x"]))`,
			want: []string{"(V0 + optree(concat))"},
		},
		{
			name: "Nested Candidate Runs First",
			src:  `add(const[iv=1], concat(multiply(padsv[targ=1], const[iv=2]), const[pv="x"]))`,
			want: []string{"(V0 * 2)", "(1 + optree(concat))"},
		},
		{
			name: "Complement Is Opaque",
			src:  "add(complement(padsv[targ=1]), const[iv=1])",
			want: []string{"(optree(complement) + 1)"},
		},
		{
			name: "Calls Are Searched",
			src:  "entersub(pushmark, add(padsv[targ=1], const[iv=1]), gv)",
			want: []string{"(V0 + 1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := find(t, tt.src)
			got := candidateStrings(res)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("candidates = %q, want %q", got, tt.want)
			}
			res.Release()
		})
	}
}

func TestUnrepresentableChildFailsRoot(t *testing.T) {
	// print in list context cannot stand in for one operand of add, but the
	// multiply inside it is still found.
	res := find(t, "add(padsv[targ=1], print[want=list](pushmark, multiply(padsv[targ=2], const[iv=3])))")
	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates %q, want 1", len(res.Candidates), candidateStrings(res))
	}
	op, ok := res.Candidates[0].(*ast.Op)
	if !ok || op.Code != ast.BinopMultiply {
		t.Fatalf("candidate = %s, want the multiply", res.Candidates[0])
	}
	if res.Candidates[0].HostNode().Kind() != optree.KindMultiply {
		t.Errorf("host node = %s", optree.Describe(res.Candidates[0].HostNode()))
	}
}

func TestBarrierChildFailsRoot(t *testing.T) {
	for _, src := range []string{
		"add(padsv[targ=1], return(const[iv=1]))",
		"add(padsv[targ=1], die(const[pv=\"x\"]))",
		"add(padsv[targ=1], concat[want=void](padsv[targ=2], const[pv=\"x\"]))",
	} {
		t.Run(src, func(t *testing.T) {
			if res := find(t, src); len(res.Candidates) != 0 {
				t.Errorf("candidates = %q, want none", candidateStrings(res))
			}
		})
	}
}

func TestFailedAttemptRollsBackNestedCandidates(t *testing.T) {
	// The multiply is found inside the opaque concat during the attempt at
	// add; return then fails add. The multiply must appear exactly once.
	res := find(t, `add(concat(multiply(padsv[targ=1], const[iv=2]), const[pv="x"]), return(const[iv=1]))`)

	got := candidateStrings(res)
	if !reflect.DeepEqual(got, []string{"(V0 * 2)"}) {
		t.Fatalf("candidates = %q", got)
	}
	for _, c := range res.Candidates {
		ast.Walk(c, func(term ast.Term) {
			if ast.Freed(term) {
				t.Errorf("candidate holds released term %s", term)
			}
		})
	}
}

func TestFailedOperandReleasesBuiltSiblings(t *testing.T) {
	// Release clears the kids, so collect the whole subtree first.
	var built []ast.Term
	orig := releaseTerms
	releaseTerms = func(ts []ast.Term) int {
		for _, term := range ts {
			ast.Walk(term, func(kid ast.Term) { built = append(built, kid) })
		}
		return orig(ts)
	}
	t.Cleanup(func() { releaseTerms = orig })

	f := newFinder(NewContext(Defaults()))
	term, err := f.translate(optree.MustParse("add(add(padsv[targ=1], const[iv=1]), return(const[iv=1]))"))
	if term != nil {
		t.Fatalf("translate returned %s, want failure", term)
	}
	var ue *UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnsupportedError", err)
	}

	// The left operand: the inner add, its variable read and its constant.
	if len(built) != 3 {
		t.Fatalf("released %d terms, want 3", len(built))
	}
	for _, term := range built {
		if !ast.Freed(term) {
			t.Errorf("%s term was not released", term.Kind())
		}
	}
	if len(f.candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(f.candidates))
	}
}

func TestFailedAttemptRollsBackAttributes(t *testing.T) {
	res := find(t, `add(
		concat(`+attrCall(1, "Int", "shared")+`, const[pv="x"]),
		return(const[iv=1]))`)
	if len(res.Attributes) != 1 {
		t.Errorf("got %d attribute records, want 1", len(res.Attributes))
	}
}

func TestReadsShareDeclaration(t *testing.T) {
	res := find(t, "add(padsv[targ=5], multiply(padsv[targ=5], padsv[targ=6]))")
	if len(res.Candidates) != 1 {
		t.Fatalf("got %d candidates", len(res.Candidates))
	}
	root := res.Candidates[0].(*ast.Op)
	a := root.Kids[0].(*ast.Variable)
	b := root.Kids[1].(*ast.Op).Kids[0].(*ast.Variable)
	if a.Decl != b.Decl {
		t.Fatalf("reads of slot 5 got indices %d and %d", a.Decl, b.Decl)
	}
	if res.Declarations.Resolve(a) != res.Declarations.Resolve(b) {
		t.Error("reads resolve to different declarations")
	}
	if res.Declarations.Len() != 2 {
		t.Errorf("Len = %d, want 2", res.Declarations.Len())
	}
}

func TestIntroYieldsDeclaration(t *testing.T) {
	res := find(t, "sassign(const[iv=1], padsv[targ=4, intro])")
	op := res.Candidates[0].(*ast.Op)
	decl, ok := op.Kids[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("assignment target = %T, want declaration", op.Kids[0])
	}
	if !decl.Introduced() || decl.Slot != 4 {
		t.Errorf("decl = %+v", decl)
	}
	res.Release()
	if ast.Freed(decl) {
		t.Error("Release freed a shared declaration")
	}
}

func TestCompoundAssignRewrite(t *testing.T) {
	tests := []struct {
		kind string
		code ast.OpCode
		want string
	}{
		{"orassign", ast.BinopBoolOr, "(V0 ||= 5)"},
		{"andassign", ast.BinopBoolAnd, "(V0 &&= 5)"},
		{"dorassign", ast.BinopDefinedOr, "(V0 //= 5)"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			res := find(t, tt.kind+"(padsv[targ=1], sassign(const[iv=5], padsv[targ=1]))")
			if len(res.Candidates) != 1 {
				t.Fatalf("got %d candidates", len(res.Candidates))
			}
			op, ok := res.Candidates[0].(*ast.Op)
			if !ok {
				t.Fatalf("candidate is %T", res.Candidates[0])
			}
			if op.Code != tt.code || !op.AssignForm || !op.Code.IsConditional() {
				t.Errorf("op = %s (assign form %v)", op.Code, op.AssignForm)
			}
			if len(op.Kids) != 2 {
				t.Fatalf("got %d kids, want 2", len(op.Kids))
			}
			if v, ok := op.Kids[0].(*ast.Variable); !ok || v.Decl != 0 {
				t.Errorf("first kid = %s", op.Kids[0])
			}
			if c, ok := op.Kids[1].(*ast.Constant); !ok || c.Type != ast.ConstInt || c.Int != 5 {
				t.Errorf("second kid = %s", op.Kids[1])
			}
			if got := op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			ast.Walk(op, func(term ast.Term) {
				if o, ok := term.(*ast.Op); ok && o.Code == ast.BinopSAssign {
					t.Error("intermediate assignment left in the output")
				}
			})
		})
	}
}

func TestInvariantViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"Binop With Three Operands", "add(const[iv=1], const[iv=2], const[iv=3])"},
		{"Unop With Two Operands", "sqrt(const[iv=1], const[iv=2])"},
		{"Binop Without Operands", "add"},
		{"Ternary With Two Operands", "cond_expr(padsv[targ=1], const[iv=1])"},
		{"Rand With Two Operands", "add(rand(const[iv=1], const[iv=2]), const[iv=1])"},
		{"Compound Assign Without Assignment", "orassign(padsv[targ=1], const[iv=5])"},
		{"Compound Assign To Other Slot", "orassign(padsv[targ=1], sassign(const[iv=5], padsv[targ=2]))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				var ie *InvariantError
				err, ok := r.(error)
				if !ok || !errors.As(err, &ie) {
					t.Fatalf("panic value = %#v, want *InvariantError", r)
				}
				if ie.Node == nil || ie.Msg == "" {
					t.Errorf("incomplete invariant error: %v", ie)
				}
			}()
			find(t, tt.src)
		})
	}
}

func TestPassThroughNull(t *testing.T) {
	src := "add(null(padsv[targ=1]), const[iv=1])"

	res := FindCandidates(NewContext(Defaults()), optree.MustParse(src))
	if got := candidateStrings(res); !reflect.DeepEqual(got, []string{"(V0 + 1)"}) {
		t.Errorf("with pass-through: %q", got)
	}

	opts := Defaults()
	opts.PassThroughNull = false
	res = FindCandidates(NewContext(opts), optree.MustParse(src))
	if got := candidateStrings(res); !reflect.DeepEqual(got, []string{"(optree(null) + 1)"}) {
		t.Errorf("without pass-through: %q", got)
	}

	// Nulls with a former kind other than list are never passed through.
	res = FindCandidates(NewContext(Defaults()), optree.MustParse("add(null[ex=rv2sv](gv), const[iv=1])"))
	if got := candidateStrings(res); !reflect.DeepEqual(got, []string{"(optree(null (ex-rv2sv)) + 1)"}) {
		t.Errorf("ex-rv2sv: %q", got)
	}
}

func TestDescendIntoCalls(t *testing.T) {
	src := "entersub(pushmark, add(padsv[targ=1], const[iv=1]), gv)"
	opts := Defaults()
	opts.DescendIntoCalls = false
	if res := FindCandidates(NewContext(opts), optree.MustParse(src)); len(res.Candidates) != 0 {
		t.Errorf("candidates = %q, want none", candidateStrings(res))
	}
}

func TestDeclaredTypes(t *testing.T) {
	ctx := NewContext(Defaults())
	ctx.Types = ast.TypeMap{2: &ast.Scalar{ID: ast.TypeDouble}}
	res := FindCandidates(ctx, optree.MustParse("add(padsv[targ=1], padsv[targ=2])"))

	decls := res.Declarations.All()
	if len(decls) != 2 {
		t.Fatalf("got %d declarations", len(decls))
	}
	if !decls[0].ValueType.IsUnspecified() {
		t.Errorf("slot 1 type = %s", decls[0].ValueType)
	}
	if decls[1].ValueType.Tag() != ast.TypeDouble {
		t.Errorf("slot 2 type = %s", decls[1].ValueType)
	}
}

func TestFindCandidatesSeq(t *testing.T) {
	body := optree.MustParse(`lineseq(
		add(padsv[targ=1], const[iv=1]),
		multiply(padsv[targ=1], const[iv=2]))`)
	res := FindCandidatesSeq(NewContext(Defaults()), body.Kids[0])
	want := []string{"(V0 + 1)", "(V0 * 2)"}
	if got := candidateStrings(res); !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %q, want %q", got, want)
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(Defaults())
	ctx.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	FindCandidates(ctx, optree.MustParse("add(padsv[targ=1], return(const[iv=1]))"))

	out := buf.String()
	for _, want := range []string{"attempting translation", "candidate rejected", "control flow"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "level=ERROR") || strings.Contains(out, "level=WARN") {
		t.Errorf("non-translatability logged above debug:\n%s", out)
	}
}

func TestUnsupportedErrorMessage(t *testing.T) {
	err := &UnsupportedError{Node: optree.MustParse("return"), Reason: "control flow or statement op"}
	if got := err.Error(); got != "unsupported return: control flow or statement op" {
		t.Errorf("Error() = %q", got)
	}
}
