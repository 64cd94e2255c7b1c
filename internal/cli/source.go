package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
	"opjit/pkg/optree"
	"opjit/pkg/utils"
)

var (
	fixtureExts  = []string{".yml", ".yaml"}
	notationExts = []string{".opt"}
)

// unit is one function body ready for a pass.
type unit struct {
	Name  string
	Path  string
	Root  optree.Node
	Types ast.TypeMap
}

// loadUnits expands args and loads every file. Fixtures carry their own
// type annotations; notation files hold ';'-separated statements that form
// one body.
func loadUnits(ctx *jit.Context, args []string) ([]unit, error) {
	exts := append(append([]string{}, fixtureExts...), notationExts...)
	paths, err := utils.ExpandInputs(args, exts...)
	if err != nil {
		return nil, err
	}

	units := make([]unit, 0, len(paths))
	for _, path := range paths {
		u, err := loadUnit(ctx, path)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func loadUnit(ctx *jit.Context, path string) (unit, error) {
	if utils.HasExt(path, fixtureExts...) {
		fx, err := optree.LoadFixture(path)
		if err != nil {
			return unit{}, err
		}
		types, err := fixtureTypes(ctx, fx)
		if err != nil {
			return unit{}, fmt.Errorf("%s: %w", path, err)
		}
		return unit{Name: fx.Name, Path: fx.Path, Root: fx.Root, Types: types}, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return unit{}, fmt.Errorf("failed to read %q: %w", path, err)
	}
	root, err := parseBody(string(src))
	if err != nil {
		return unit{}, fmt.Errorf("%s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return unit{Name: name, Path: path, Root: root}, nil
}

// parseBody parses src and joins several statements under one lineseq.
func parseBody(src string) (*optree.Op, error) {
	trees, err := optree.ParseTrees(src)
	if err != nil {
		return nil, err
	}
	switch len(trees) {
	case 0:
		return nil, fmt.Errorf("no op tree found")
	case 1:
		return trees[0], nil
	}
	return optree.NewOp(optree.KindLineSeq, trees...), nil
}

func fixtureTypes(ctx *jit.Context, fx *optree.Fixture) (ast.TypeMap, error) {
	if len(fx.Types) == 0 {
		return nil, nil
	}
	parse := ctx.ParseType
	if parse == nil {
		parse = ast.ParseType
	}
	types := make(ast.TypeMap, len(fx.Types))
	for _, slot := range fx.SortedSlots() {
		t, ok := parse(fx.Types[slot])
		if !ok {
			return nil, fmt.Errorf("slot %d: unknown type %q", slot, fx.Types[slot])
		}
		types[slot] = t
	}
	return types, nil
}

// run performs one pass over u. An *InvariantError panic is turned into an
// error naming the unit so the command can report it.
func run(ctx *jit.Context, u unit) (res *jit.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*jit.InvariantError)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("%s: internal error: %w", u.Name, ie)
		}
	}()
	pass := *ctx
	pass.Types = u.Types
	return jit.FindCandidates(&pass, u.Root), nil
}
