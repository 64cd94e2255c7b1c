package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"opjit/pkg/ast"
	"opjit/pkg/jit"
)

func newScanCmd(s *settings) *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:   "scan FILE|DIR...",
		Short: "List the JIT candidates of op-tree fixtures",
		Long: `Scan loads each fixture (.yml) or notation file (.opt), runs one
candidate pass over it and prints the candidates and the declaration
table. Directories are expanded to the files they contain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := s.context(cmd.ErrOrStderr())
			units, err := loadUnits(ctx, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var failed []error
			written := 0
			for _, u := range units {
				res, err := run(ctx, u)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
					failed = append(failed, err)
					continue
				}
				if asJSON {
					err = jit.NewReport(u.Path, res).WriteJSON(out)
				} else {
					if written > 0 {
						fmt.Fprintln(out)
					}
					err = writeResult(out, u.Name, res)
				}
				written++
				res.Release()
				if err != nil {
					return err
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d input(s) failed: %w", len(failed), len(units), errors.Join(failed...))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON report per file")
	return cmd
}

// writeResult prints a human readable summary of res.
func writeResult(w io.Writer, name string, res *jit.Result) error {
	if _, err := fmt.Fprintf(w, "%s: %d candidate(s)\n", name, len(res.Candidates)); err != nil {
		return err
	}
	for i, c := range res.Candidates {
		fmt.Fprintf(w, "\nCandidate %d: %s\n", i, c)
		ast.Dump(w, c)
	}
	for _, a := range res.Attributes {
		state := "kept"
		if a.Removable {
			state = "removable"
		}
		fmt.Fprintf(w, "\nAttribute: slot %d type %s (%s)\n", a.Slot, a.Type, state)
	}
	fmt.Fprintln(w)
	_, err := io.WriteString(w, res.Declarations.String())
	return err
}
