package optree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture is one function body stored on disk: the op tree plus the type
// annotations the host's attribute parser would have produced for it.
//
//	name: hypot
//	types:
//	  1: Double
//	tree: |
//	  sqrt(add(multiply(padsv[targ=1], padsv[targ=1]), const[iv=1]))
type Fixture struct {
	Path  string
	Name  string
	Types map[Slot]string
	Root  *Op
}

type fixtureFile struct {
	Name  string            `yaml:"name"`
	Types map[uint32]string `yaml:"types"`
	Tree  string            `yaml:"tree"`
	Root  *fixtureNode      `yaml:"root"`
}

// fixtureNode is the structured alternative to the notation string.
type fixtureNode struct {
	Kind    string         `yaml:"kind"`
	Targ    uint32         `yaml:"targ"`
	Ex      string         `yaml:"ex"`
	Intro   bool           `yaml:"intro"`
	Special bool           `yaml:"special"`
	Stacked bool           `yaml:"stacked"`
	Want    string         `yaml:"want"`
	IV      *int64         `yaml:"iv"`
	UV      *uint64        `yaml:"uv"`
	NV      *float64       `yaml:"nv"`
	PV      *string        `yaml:"pv"`
	Kids    []*fixtureNode `yaml:"kids"`
}

// LoadFixture reads a YAML fixture from disk.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return nil, fmt.Errorf("fixture: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", absPath, err)
	}
	defer file.Close()

	fx, err := DecodeFixture(file)
	if err != nil {
		return nil, fmt.Errorf("fixture: %s: %w", absPath, err)
	}
	fx.Path = absPath
	if fx.Name == "" {
		fx.Name = strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	}
	return fx, nil
}

// DecodeFixture decodes one YAML fixture document. Unknown fields are
// rejected.
func DecodeFixture(r io.Reader) (*Fixture, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw fixtureFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty fixture")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}

	fx := &Fixture{Name: raw.Name, Types: make(map[Slot]string, len(raw.Types))}
	for slot, typ := range raw.Types {
		fx.Types[Slot(slot)] = typ
	}

	switch {
	case raw.Tree != "" && raw.Root != nil:
		return nil, fmt.Errorf("tree and root are mutually exclusive")
	case raw.Tree != "":
		root, err := ParseTree(raw.Tree)
		if err != nil {
			return nil, fmt.Errorf("tree: %w", err)
		}
		fx.Root = root
	case raw.Root != nil:
		root, err := raw.Root.toOp("root")
		if err != nil {
			return nil, err
		}
		fx.Root = root
	default:
		return nil, fmt.Errorf("one of tree or root is required")
	}
	return fx, nil
}

func (n *fixtureNode) toOp(path string) (*Op, error) {
	kind, ok := KindByName(n.Kind)
	if !ok {
		return nil, fmt.Errorf("%s: unknown op kind %q", path, n.Kind)
	}
	op := &Op{OpKind: kind, OpTarg: n.Targ}

	if n.Ex != "" {
		former, ok := KindByName(n.Ex)
		if kind != KindNull || !ok {
			return nil, fmt.Errorf("%s: bad ex %q on %s", path, n.Ex, kind)
		}
		op.OpTarg = uint32(former)
	}
	if n.Intro {
		op.OpPrivate |= LvalIntro
	}
	if n.Special {
		op.OpFlags |= Special
	}
	if n.Stacked {
		op.OpFlags |= Stacked
	}
	switch n.Want {
	case "":
	case "void":
		op.OpFlags |= WantVoid
	case "scalar":
		op.OpFlags |= WantScalar
	case "list":
		op.OpFlags |= WantList
	default:
		return nil, fmt.Errorf("%s: want must be void, scalar or list, got %q", path, n.Want)
	}

	if n.IV != nil {
		v := op.value()
		v.IOK, v.IV = true, *n.IV
	}
	if n.UV != nil {
		v := op.value()
		v.IOK, v.IsUV, v.UV = true, true, *n.UV
	}
	if n.NV != nil {
		v := op.value()
		v.NOK, v.NV = true, *n.NV
	}
	if n.PV != nil {
		v := op.value()
		v.POK, v.PV = true, *n.PV
	}

	kids := make([]*Op, 0, len(n.Kids))
	for i, k := range n.Kids {
		kid, err := k.toOp(fmt.Sprintf("%s.kids[%d]", path, i))
		if err != nil {
			return nil, err
		}
		kids = append(kids, kid)
	}
	op.SetKids(kids...)
	return op, nil
}

// SortedSlots returns the annotated slots in ascending order.
func (f *Fixture) SortedSlots() []Slot {
	slots := make([]Slot, 0, len(f.Types))
	for s := range f.Types {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
