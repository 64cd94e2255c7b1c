package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"opjit/pkg/jit"
)

const (
	appName    = "opjit"
	appVersion = "0.1.0"
)

type negBoolBinding struct {
	name   string
	target *bool
	neg    *bool
}

// addBoolPair registers --name and --no-name for one option.
func addBoolPair(cmd *cobra.Command, bindings *[]negBoolBinding, target *bool, name string, usage string) {
	neg := new(bool)
	cmd.PersistentFlags().BoolVar(target, name, *target, usage)
	cmd.PersistentFlags().BoolVar(neg, "no-"+name, false, "disable "+name)
	*bindings = append(*bindings, negBoolBinding{name: name, target: target, neg: neg})
}

// settings is the state shared by every subcommand once flags and the
// config file have been merged.
type settings struct {
	configPath string
	debug      bool
	flagOpts   jit.Options
	bindings   []negBoolBinding

	cfg Config
}

// resolve loads the config file and lets explicitly set flags override it.
func (s *settings) resolve(cmd *cobra.Command) error {
	cfg, err := LoadConfig(s.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = s.debug
	}
	for _, b := range s.bindings {
		var dst *bool
		switch b.name {
		case "pass-through-null":
			dst = &cfg.Options.PassThroughNull
		case "descend-into-calls":
			dst = &cfg.Options.DescendIntoCalls
		default:
			continue
		}
		if flags.Changed(b.name) {
			*dst = *b.target
		}
		if *b.neg {
			*dst = false
		}
	}
	s.cfg = cfg
	return nil
}

// context builds a fresh JIT context logging to w.
func (s *settings) context(w io.Writer) *jit.Context {
	ctx := jit.NewContext(s.cfg.Options)
	level := slog.LevelWarn
	if s.cfg.Debug {
		level = slog.LevelDebug
	}
	ctx.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return ctx
}

// NewRootCmd builds the opjit command tree.
func NewRootCmd() *cobra.Command {
	s := &settings{flagOpts: jit.Defaults()}
	showVersion := false

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Find and translate JIT candidates in host op trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			if showVersion {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, appVersion)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "print version")
	cmd.PersistentFlags().StringVarP(&s.configPath, "config", "c", "", "config file (default ./"+DefaultConfigName+" when present)")
	cmd.PersistentFlags().BoolVar(&s.debug, "debug", false, "log every traversal decision to stderr")
	addBoolPair(cmd, &s.bindings, &s.flagOpts.PassThroughNull, "pass-through-null", "let single-child null ops stand for their child")
	addBoolPair(cmd, &s.bindings, &s.flagOpts.DescendIntoCalls, "descend-into-calls", "search the arguments of subroutine calls")

	cmd.AddCommand(newScanCmd(s), newOpsCmd(), newReplCmd(s))
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}
