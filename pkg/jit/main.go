// Package jit finds the regions of a host op tree that can be compiled to
// native code and translates each into an ast.Term.
//
// Pipeline: op tree → FindCandidates (walk, translate, roll back) → Result → CodeGenerator
package jit
