package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
	"opjit/pkg/optree"
)

func TestFixtures(t *testing.T) {
	tests := []struct {
		file       string
		candidates []string
		decls      []string
	}{
		{
			file:       "hypot.yml",
			candidates: []string{"(sqrt ((V0 * V0) + (V1 * V1)))"},
			decls:      []string{"Double", "Double"},
		},
		{
			file:       "default_value.yml",
			candidates: []string{"(my V0 = optree(rv2sv))", "(V0 ||= 5)", "(V0 + 1)"},
			decls:      []string{"Unspecified"},
		},
		{
			file:       "typed_counter.yml",
			candidates: []string{"nulloptree(entersub)", "(V0 = (V0 + 1))"},
			decls:      []string{"Int"},
		},
		{
			file:       "islands.yml",
			candidates: []string{"(V1 * 1.5)", "?:((V0 < 0), (unary - V0), optree(concat))"},
			decls:      []string{"Unspecified", "Unspecified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			fx, err := optree.LoadFixture(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("LoadFixture: %v", err)
			}

			ctx := jit.NewContext(jit.Defaults())
			types := ast.TypeMap{}
			for slot, s := range fx.Types {
				typ, ok := ast.ParseType(s)
				if !ok {
					t.Fatalf("slot %d: bad type %q", slot, s)
				}
				types[slot] = typ
			}
			ctx.Types = types

			res := jit.FindCandidates(ctx, fx.Root)
			defer res.Release()

			got := make([]string, len(res.Candidates))
			for i, c := range res.Candidates {
				got[i] = c.String()
			}
			if !reflect.DeepEqual(got, tt.candidates) {
				t.Errorf("candidates =\n  %q\nwant\n  %q", got, tt.candidates)
			}

			var decls []string
			for _, d := range res.Declarations.All() {
				decls = append(decls, d.ValueType.String())
			}
			if !reflect.DeepEqual(decls, tt.decls) {
				t.Errorf("declaration types = %q, want %q", decls, tt.decls)
			}
		})
	}
}
