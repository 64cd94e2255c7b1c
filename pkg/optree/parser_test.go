package optree

import (
	"strings"
	"testing"
)

func TestParseTree(t *testing.T) {
	t.Run("Nested", func(t *testing.T) {
		root, err := ParseTree("add(padsv[targ=1], const[iv=-42])")
		if err != nil {
			t.Fatalf("ParseTree: %v", err)
		}
		if root.Kind() != KindAdd {
			t.Fatalf("root kind = %s, want add", root.Kind())
		}
		kids := Kids(root)
		if len(kids) != 2 {
			t.Fatalf("got %d kids, want 2", len(kids))
		}
		if kids[0].Kind() != KindPadSV || kids[0].Targ() != 1 {
			t.Errorf("first kid = %s, want padsv[targ=1]", Describe(kids[0]))
		}
		v := kids[1].Value()
		if v == nil || !v.IOK || v.IsUV || v.IV != -42 {
			t.Errorf("const value = %+v, want iv=-42", v)
		}
		if kids[0].Sibling() != kids[1] {
			t.Error("sibling chain not linked")
		}
		if kids[1].Sibling() != nil {
			t.Error("last kid has a sibling")
		}
	})

	t.Run("Attributes", func(t *testing.T) {
		root := MustParse(`entersub[special, stacked, want=scalar](method_named[pv="import"])`)
		if root.Flags()&Special == 0 || root.Flags()&Stacked == 0 {
			t.Errorf("flags = %b, want special and stacked", root.Flags())
		}
		if root.Flags().Want() != ContextScalar {
			t.Errorf("want = %s, want scalar", root.Flags().Want())
		}
		m := root.First()
		if m.Value() == nil || !m.Value().POK || m.Value().PV != "import" {
			t.Errorf("method value = %+v", m.Value())
		}
	})

	t.Run("Intro And Ex", func(t *testing.T) {
		root := MustParse("null[ex=list](padsv[targ=2, intro])")
		if Kind(root.Targ()) != KindList {
			t.Errorf("ex = %s, want list", Kind(root.Targ()))
		}
		if root.First().Private()&LvalIntro == 0 {
			t.Error("intro flag missing")
		}
		if got := Describe(root); got != "null (ex-list)" {
			t.Errorf("Describe = %q", got)
		}
	})

	t.Run("Unsigned And Float", func(t *testing.T) {
		root := MustParse("list(const[uv=18446744073709551615], const[nv=2.5])")
		kids := Kids(root)
		if v := kids[0].Value(); !v.IsUV || v.UV != 18446744073709551615 {
			t.Errorf("uv = %+v", v)
		}
		if v := kids[1].Value(); !v.NOK || v.NV != 2.5 {
			t.Errorf("nv = %+v", v)
		}
	})
}

func TestParseTreesSeparator(t *testing.T) {
	trees, err := ParseTrees("add(const[iv=1], const[iv=2]);\nmultiply(const[iv=3], const[iv=4]);")
	if err != nil {
		t.Fatalf("ParseTrees: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d trees, want 2", len(trees))
	}
	if trees[0].Kind() != KindAdd || trees[1].Kind() != KindMultiply {
		t.Errorf("kinds = %s, %s", trees[0].Kind(), trees[1].Kind())
	}
}

func TestParseRoundTrip(t *testing.T) {
	srcs := []string{
		"add(padsv[targ=1], const[iv=5])",
		`cond_expr(padsv[targ=1], const[pv="yes"], const[nv=0.5])`,
		"sassign(const[uv=7], padsv[targ=3, intro])",
		"null[ex=list](stub[want=list])",
		"entersub[special](pushmark, method_named[pv=\"import\"])",
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			op := MustParse(src)
			if got := op.String(); got != src {
				t.Errorf("String() = %q, want %q", got, src)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Unknown Kind", "frobnicate(const[iv=1])", "unknown op kind"},
		{"Unknown Attribute", "const[colour=1]", "unknown attribute"},
		{"Ex On Non Null", "add[ex=list]", "only valid on null"},
		{"Bad Want", "stub[want=maybe]", "want must be"},
		{"Bad Targ", "padsv[targ=-1]", "targ wants"},
		{"String Iv", `const[iv="x"]`, "iv wants"},
		{"Missing Paren", "add(const[iv=1]", "expected RPAREN"},
		{"Trailing Garbage", "add ]", "expected ';'"},
		{"Two Trees", "stub; stub", "exactly one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTree(tt.input)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParseErrorSnippet(t *testing.T) {
	_, err := ParseTree("add(\n  const[iv=1],\n  bogus)")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "line 3") || !strings.Contains(msg, "|> ") || !strings.Contains(msg, "bogus") {
		t.Errorf("error lacks line and snippet: %q", msg)
	}
}
