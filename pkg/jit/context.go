package jit

import (
	"log/slog"

	"opjit/pkg/ast"
	"opjit/pkg/optree"
)

// Options tunes candidate discovery.
type Options struct {
	// PassThroughNull lets a nulled op with a single child stand for that
	// child. When off, such nulls are opaque.
	PassThroughNull bool `yaml:"pass_through_null"`

	// DescendIntoCalls searches the arguments of subroutine calls that are
	// not attribute declarations.
	DescendIntoCalls bool `yaml:"descend_into_calls"`
}

// Defaults returns the options used when nothing is configured.
func Defaults() Options {
	return Options{
		PassThroughNull:  true,
		DescendIntoCalls: true,
	}
}

// CodeGenerator consumes the result of a pass. It takes ownership of the
// candidate terms.
type CodeGenerator interface {
	Generate(res *Result) error
}

// Context carries everything one compilation pass needs. There is no
// process-wide state; independent passes use independent contexts.
type Context struct {
	Options Options
	Logger  *slog.Logger

	// Types supplies declared types by slot; may be nil.
	Types ast.TypeLookup
	// ParseType turns an attribute string into a type.
	ParseType func(string) (ast.Type, bool)

	// CodeGen receives each result produced by Peep. When nil, Peep
	// releases the candidates itself.
	CodeGen CodeGenerator
	// NextPeep is the peephole stage that ran before this one was installed.
	NextPeep func(optree.Node)
}

// NewContext returns a context with a discarding logger and the default
// type parser.
func NewContext(opts Options) *Context {
	return &Context{
		Options:   opts,
		Logger:    slog.New(slog.DiscardHandler),
		ParseType: ast.ParseType,
	}
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Context) parseType(s string) (ast.Type, bool) {
	if c.ParseType == nil {
		return ast.ParseType(s)
	}
	return c.ParseType(s)
}
