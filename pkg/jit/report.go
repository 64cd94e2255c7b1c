package jit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

// Report is the JSON-serializable summary of a Result.
type Report struct {
	Source       string              `json:"source,omitempty"`
	Candidates   []candidateReport   `json:"candidates"`
	Declarations []declarationReport `json:"declarations"`
	Attributes   []attributeReport   `json:"attributes,omitempty"`
}

type candidateReport struct {
	Root  string   `json:"root"`
	Kind  string   `json:"kind"`
	Expr  string   `json:"expr"`
	Dump  []string `json:"dump"`
	Terms int      `json:"terms"`
}

type declarationReport struct {
	Index      int    `json:"index"`
	Slot       uint32 `json:"slot"`
	Type       string `json:"type"`
	Introduced bool   `json:"introduced"`
}

type attributeReport struct {
	Call      string `json:"call"`
	Slot      uint32 `json:"slot"`
	Type      string `json:"type"`
	Removable bool   `json:"removable"`
}

// NewReport snapshots res. It does not take ownership of the candidates.
func NewReport(source string, res *Result) *Report {
	r := &Report{
		Source:       source,
		Candidates:   make([]candidateReport, 0, len(res.Candidates)),
		Declarations: make([]declarationReport, 0, res.Declarations.Len()),
	}
	for _, c := range res.Candidates {
		terms := 0
		ast.Walk(c, func(ast.Term) { terms++ })
		r.Candidates = append(r.Candidates, candidateReport{
			Root:  optree.Describe(c.HostNode()),
			Kind:  c.Kind().String(),
			Expr:  c.String(),
			Dump:  strings.Split(strings.TrimRight(ast.DumpString(c), "\n"), "\n"),
			Terms: terms,
		})
	}
	for _, d := range res.Declarations.All() {
		r.Declarations = append(r.Declarations, declarationReport{
			Index:      d.Index,
			Slot:       uint32(d.Slot),
			Type:       d.ValueType.String(),
			Introduced: d.Introduced(),
		})
	}
	for _, a := range res.Attributes {
		r.Attributes = append(r.Attributes, attributeReport{
			Call:      optree.Describe(a.Call),
			Slot:      uint32(a.Slot),
			Type:      a.Type.String(),
			Removable: a.Removable,
		})
	}
	return r
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
