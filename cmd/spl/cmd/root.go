/*
File   : spl/cmd/spl/cmd/root.go

root.go wires the `spl` command: a single positional INPUT file plus
--arch/--output-stage/-o, falling through to the REPL when INPUT is
omitted.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/config"
	"github.com/gospl/spl/interp"
	"github.com/gospl/spl/ir"
	"github.com/gospl/spl/parser"
	"github.com/gospl/spl/regalloc"
	"github.com/gospl/spl/repl"
)

// archRegisters maps a supported --arch value to the physical register
// count its register allocator targets. x86_64 is the only architecture
// SPL currently understands.
var archRegisters = map[string]int{
	"x86_64": 8,
}

var (
	archFlag        string
	outputStageFlag string
	outputFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:     "spl [INPUT]",
	Short:   "SPL - a small Rust-like imperative language",
	Version: Version,
	Long: `spl compiles and runs programs written in SPL, a small Rust-like
imperative language, through its lex -> parse -> IR -> (interpret |
register-allocate) pipeline.

Given an input file, spl lexes, parses, lowers to IR, and either pretty-
prints an intermediate stage or interprets the program, depending on
--output-stage. Without an INPUT argument, spl starts an interactive
REPL instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,
}

func init() {
	rootCmd.Flags().StringVar(&archFlag, "arch", "x86_64", "target architecture (determines the physical register count)")
	rootCmd.Flags().StringVar(&outputStageFlag, "output-stage", "run", "pipeline stage to stop at: ast, ir, or run")
	rootCmd.Flags().StringVarP(&outputFileFlag, "output", "o", "", "write output to this file instead of stdout")
}

// Execute runs the root command; cmd/spl/main.go calls this and nothing
// else.
func Execute() error {
	return rootCmd.Execute()
}

// runRoot applies .splrc.yaml over the flag defaults before dispatching:
// a flag the user actually passed on the command line always wins, since
// Changed only reports true once cobra has parsed an explicit value for
// it. Color is a process-wide switch on the color package itself, so it
// is applied here rather than threaded through as a parameter.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cmd.Flags().Changed("arch") {
		archFlag = cfg.Arch
	}
	if !cmd.Flags().Changed("output-stage") {
		outputStageFlag = cfg.OutputStage
	}
	color.NoColor = !cfg.Color

	if len(args) == 0 {
		return startRepl(cfg)
	}
	return runFile(args[0])
}

func startRepl(cfg config.Config) error {
	session := repl.New(
		"SPL interactive shell",
		Version,
		"----------------------------------------",
		cfg.Prompt,
	)
	return session.Start(os.Stdout)
}

func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out := os.Stdout
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputFileFlag, err)
		}
		defer f.Close()
		return runStage(string(source), f)
	}
	return runStage(string(source), out)
}

func runStage(source string, out *os.File) error {
	block, err := parser.ParseProgram(source)
	if err != nil {
		return err
	}

	if outputStageFlag == "ast" {
		ast.Fprint(out, block)
		return nil
	}

	program, err := ir.Build(block)
	if err != nil {
		return err
	}

	switch outputStageFlag {
	case "ir":
		fmt.Fprint(out, program.String())
		return nil
	case "run":
		return runProgram(program, out)
	default:
		return fmt.Errorf("unknown --output-stage %q (want ast, ir, or run)", outputStageFlag)
	}
}

// runProgram allocates physical registers for program and interprets the
// allocated form, cross-checking it against a direct interpretation of
// the unallocated IR. A mismatch means the allocator broke the program's
// semantics, which is an allocator bug rather than something the user's
// source caused, so it is reported distinctly from an ordinary runtime
// diag.Error.
func runProgram(program ir.Program, out *os.File) error {
	k, ok := archRegisters[archFlag]
	if !ok {
		return fmt.Errorf("unsupported --arch %q", archFlag)
	}

	allocated, err := regalloc.Allocate(program, k)
	if err != nil {
		return err
	}

	reference := &stringWriter{}
	if _, _, err := interp.New(reference).Run(program); err != nil {
		return err
	}

	actual := &stringWriter{}
	if _, _, err := interp.New(actual).Run(allocated); err != nil {
		return err
	}

	if reference.String() != actual.String() {
		return fmt.Errorf("register allocator changed program output for --arch %s (this is an allocator bug, not a program error)", archFlag)
	}

	_, err = out.WriteString(actual.String())
	return err
}

// stringWriter buffers one interpretation's output so runProgram can
// compare the reference run against the allocated run before writing
// anything; only the allocated run's buffer is written to out.
type stringWriter struct {
	buf []byte
}

func (w *stringWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *stringWriter) String() string { return string(w.buf) }
