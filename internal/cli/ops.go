package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
	"opjit/pkg/optree"
)

func newOpsCmd() *cobra.Command {
	showKinds := false

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Print the operator metadata table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showKinds {
				fmt.Fprintf(out, "%-14s %s\n", "KIND", "ROOT")
				for _, k := range optree.Kinds() {
					root := ""
					if jit.RootEligible(k) {
						root = "yes"
					}
					fmt.Fprintf(out, "%-14s %s\n", k, root)
				}
				return nil
			}

			fmt.Fprintf(out, "%-10s %-7s %s\n", "OP", "CLASS", "FLAGS")
			for _, c := range ast.OpCodes() {
				fmt.Fprintf(out, "%-10s %-7s %s\n", c.Name(), c.Class(), flagNames(c.Flags()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKinds, "kinds", false, "list host op kinds and which may start a candidate")
	return cmd
}

func flagNames(f ast.OpFlags) string {
	var names []string
	if f&ast.FlagConditional != 0 {
		names = append(names, "conditional")
	}
	if f&ast.FlagAssignment != 0 {
		names = append(names, "assignment")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
