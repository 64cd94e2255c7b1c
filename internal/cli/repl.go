package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
	"opjit/pkg/optree"
)

const (
	promptMain = "opjit> "
	promptCont = "  ...> "
	replHelp   = `Enter an op tree in notation, e.g. add(padsv[targ=1], const[iv=5]).
Statements separated by ';' form one body. Commands:
  :type SLOT TYPE   declare the type of a pad slot
  :types            list declared types
  :reset            forget declared types
  :help             show this text
  :quit             leave`
)

func newReplCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively translate op trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &repl{ctx: s.context(cmd.ErrOrStderr()), out: cmd.OutOrStdout(), types: ast.TypeMap{}}
			return r.loop(s.cfg.History)
		},
	}
}

// repl holds the state that survives between inputs.
type repl struct {
	ctx   *jit.Context
	out   io.Writer
	types ast.TypeMap
}

func (r *repl) loop(histPath string) error {
	fmt.Fprintf(r.out, "%s %s, :help for help\n", appName, appVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		src, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if quit := r.eval(src); quit {
			return nil
		}
	}
}

// readBalanced keeps prompting while the input has unclosed parentheses,
// brackets or an unterminated string.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src needs more lines to form a tree.
func incomplete(src string) bool {
	tokens, err := optree.Lex(src)
	if err != nil {
		return strings.Contains(err.Error(), "unterminated string")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case optree.LPAREN, optree.LBRACKET:
			depth++
		case optree.RPAREN, optree.RBRACKET:
			depth--
		}
	}
	return depth > 0
}

// eval handles one complete input and reports whether the user asked to
// leave.
func (r *repl) eval(src string) (quit bool) {
	line := strings.TrimSpace(src)
	if strings.HasPrefix(line, ":") {
		return r.command(strings.Fields(line))
	}

	root, err := parseBody(src)
	if err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return false
	}
	res, err := run(r.ctx, unit{Name: "input", Root: root, Types: r.types})
	if err != nil {
		fmt.Fprintln(r.out, "error:", err)
		return false
	}
	defer res.Release()
	if err := writeResult(r.out, "input", res); err != nil {
		fmt.Fprintln(r.out, "error:", err)
	}
	return false
}

func (r *repl) command(fields []string) (quit bool) {
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(r.out, replHelp)
	case ":reset":
		r.types = ast.TypeMap{}
	case ":types":
		if len(r.types) == 0 {
			fmt.Fprintln(r.out, "no declared types")
		}
		for _, slot := range sortedSlots(r.types) {
			fmt.Fprintf(r.out, "slot %d: %s\n", slot, r.types[slot])
		}
	case ":type":
		if len(fields) != 3 {
			fmt.Fprintln(r.out, "usage: :type SLOT TYPE")
			return false
		}
		var slot uint32
		if _, err := fmt.Sscan(fields[1], &slot); err != nil {
			fmt.Fprintf(r.out, "bad slot %q\n", fields[1])
			return false
		}
		t, ok := r.ctx.ParseType(fields[2])
		if !ok {
			fmt.Fprintf(r.out, "unknown type %q\n", fields[2])
			return false
		}
		r.types[optree.Slot(slot)] = t
	default:
		fmt.Fprintln(r.out, "unknown command. Type :help for help.")
	}
	return false
}

func sortedSlots(m ast.TypeMap) []optree.Slot {
	slots := make([]optree.Slot, 0, len(m))
	for s := range m {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
