/*
File   : spl/repl/repl.go

Package repl implements SPL's interactive Read-Eval-Print Loop. Each
line is parsed as additional statements appended to one growing program
block; the whole program is re-lowered to IR and re-interpreted every
line, and the last expression's value is echoed back, matching how an
interactive shell over a batch pipeline has to work when the pipeline
itself has no notion of incremental compilation.
*/
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/gospl/spl/ast"
	"github.com/gospl/spl/interp"
	"github.com/gospl/spl/ir"
	"github.com/gospl/spl/parser"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl is one interactive session's configuration: the banner text shown
// at startup and the prompt string readline displays on every line.
type Repl struct {
	Banner  string
	Version string
	Line    string
	Prompt  string

	program *ast.Block
}

// New creates a Repl with an empty accumulated program.
func New(banner, version, line, prompt string) *Repl {
	return &Repl{
		Banner:  banner,
		Version: version,
		Line:    line,
		Prompt:  prompt,
		program: &ast.Block{},
	}
}

func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "spl "+r.Version)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Type a statement and press enter.")
	cyanColor.Fprintf(writer, "%s\n", "Type 'exit' or 'quit' to leave.")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the main loop until the user exits or EOF is reached.
func (r *Repl) Start(writer io.Writer) error {
	r.PrintBannerInfo(writer)

	rl, err := readline.NewEx(&readline.Config{Prompt: r.Prompt})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("\n"))
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		rl.SaveHistory(line)
		r.evalLine(writer, line)
	}
}

// evalLine parses line as additional statements, tentatively appends
// them to the accumulated program, and re-runs the whole thing. A
// failure at any stage is printed and the accumulated program is left
// unchanged, so a typo on one line doesn't corrupt the session.
func (r *Repl) evalLine(writer io.Writer, line string) {
	block, err := parser.ParseProgram(line)
	if err != nil {
		redColor.Fprintf(writer, "%v\n", err)
		return
	}

	candidate := &ast.Block{Statements: append(append([]ast.Statement{}, r.program.Statements...), block.Statements...)}

	program, err := ir.Build(candidate)
	if err != nil {
		redColor.Fprintf(writer, "%v\n", err)
		return
	}

	machine := interp.New(writer)
	value, ok, err := machine.Run(program)
	if err != nil {
		redColor.Fprintf(writer, "%v\n", err)
		return
	}

	r.program = candidate
	if ok {
		yellowColor.Fprintf(writer, "%d\n", value)
	}
}
