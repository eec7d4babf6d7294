// Package repl provides an interactive assembly shell over a
// persistent interpreter. State registers survive between lines, so
// results built by one instruction are visible to the next.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/lmorg/readline"

	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/loader"
	"github.com/akhildatla/vvm/pkg/vvm"
)

const (
	prompt     = "vvm> "
	promptCont = "...> "
)

// REPL is an interactive read-eval-print loop.
type REPL struct {
	machine *vvm.Interpreter
	out     io.Writer
}

// New creates a REPL with a file-backed table source.
func New() *REPL {
	machine := vvm.NewInterpreter()
	machine.SetSource(loader.NewFileSource())
	return &REPL{machine: machine}
}

// Interpreter exposes the underlying machine for configuration.
func (r *REPL) Interpreter() *vvm.Interpreter { return r.machine }

// Start runs the interactive loop until quit or end of input.
func (r *REPL) Start(out io.Writer) {
	r.out = out
	r.machine.SetOutput(out)

	rl := readline.NewInstance()
	fmt.Fprintln(out, "VVM - vector virtual machine assembly")
	fmt.Fprintln(out, "Type 'help' for commands, 'quit' to exit")

	var pending strings.Builder
	inFunc := false
	for {
		if inFunc {
			rl.SetPrompt(promptCont)
		} else {
			rl.SetPrompt(prompt)
		}
		line, err := rl.Readline()
		if err != nil {
			return
		}
		trimmed := strings.TrimSpace(line)

		// Function definitions span lines up to their end marker.
		if inFunc {
			pending.WriteString(line)
			pending.WriteByte('\n')
			if trimmed == "end" {
				inFunc = false
				r.eval(pending.String())
				pending.Reset()
			}
			continue
		}

		switch trimmed {
		case "":
			continue
		case "quit", "exit":
			return
		case "help":
			r.help()
			continue
		case "reset":
			r.reset()
			continue
		}

		if isFuncStart(trimmed) {
			inFunc = true
			pending.WriteString(line)
			pending.WriteByte('\n')
			continue
		}
		r.eval(line)
	}
}

func isFuncStart(line string) bool {
	if !strings.HasPrefix(line, "@") {
		return false
	}
	_, rhs, ok := strings.Cut(line, "=")
	return ok && strings.HasPrefix(strings.TrimSpace(rhs), "def ")
}

// eval assembles and runs one chunk against the persistent machine.
func (r *REPL) eval(src string) {
	program, err := asm.Assemble(src)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	result, err := r.machine.Run(program)
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
		return
	}
	if result != "" {
		fmt.Fprintln(r.out, result)
	}
}

func (r *REPL) reset() {
	r.machine = vvm.NewInterpreter()
	r.machine.SetSource(loader.NewFileSource())
	r.machine.SetOutput(r.out)
	fmt.Fprintln(r.out, "machine reset")
}

func (r *REPL) help() {
	fmt.Fprintln(r.out, `Commands:
  help            Show this message
  reset           Discard all registers and definitions
  quit            Exit the REPL

Anything else is assembled and executed. Examples:
  $0 = {"price": f64v, "qty": i64v}
  @0 = "trades.csv"
  load $0 @0 *0
  repr $0 *0 *1
  write *1

Function definitions are accepted across lines:
  @1 = def inc("x": i64s) i64s:
    add_i64s_i64s %0 1 %1
    ret %1
  end`)
}
