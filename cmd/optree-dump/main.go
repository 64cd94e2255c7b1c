package main

import (
	"fmt"
	"os"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
	"opjit/pkg/optree"
)

const testSource = `sassign(add(multiply(padsv[targ=1], const[iv=2]), const[nv=0.5]), padsv[targ=2, intro]);
orassign(padsv[targ=2], sassign(const[iv=5], padsv[targ=2]))
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := optree.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	trees, err := optree.NewParser(tokens, src).ParseTrees()
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("Op trees")
	for _, t := range trees {
		fmt.Println(" ", t)
	}
	fmt.Println()

	if len(trees) == 0 {
		return
	}
	body := optree.NewOp(optree.KindLineSeq, trees...)

	// Candidates
	res := jit.FindCandidates(jit.NewContext(jit.Defaults()), body)
	defer res.Release()

	fmt.Printf("Candidates (%d)\n", len(res.Candidates))
	for _, c := range res.Candidates {
		ast.Dump(os.Stdout, c)
	}
	fmt.Println()
	fmt.Print(res.Declarations)
}
