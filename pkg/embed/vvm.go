// Package embed provides the Go embedding API for the machine.
//
// Pass assembly text, get the saved result back as a string:
//
//	result, err := embed.Execute(`
//	    add_i64s_i64s 2 3 %0
//	    cast_i64s_Ss %0 %1
//	    save %1
//	`)
//
// Programs that load tables resolve names through a table source; the
// default source reads files from the working directory.
package embed

import (
	"io"
	"os"

	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/loader"
	"github.com/akhildatla/vvm/pkg/vvm"
)

// Options configures execution.
type Options struct {
	// Source resolves table names for load and store. Defaults to a
	// file source rooted in the working directory.
	Source vvm.TableSource

	// Output receives anything printed by write instructions.
	// Defaults to standard output.
	Output io.Writer

	// ConsoleRows and ConsoleCols bound rendered frame output. Zero
	// keeps the machine defaults.
	ConsoleRows int
	ConsoleCols int
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithSource sets the table source used by load and store.
func WithSource(src vvm.TableSource) Option {
	return func(o *Options) {
		o.Source = src
	}
}

// WithOutput redirects printed output.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithConsoleSize bounds rendered frame output.
func WithConsoleSize(rows, cols int) Option {
	return func(o *Options) {
		o.ConsoleRows = rows
		o.ConsoleCols = cols
	}
}

// Execute assembles and runs a program, returning the saved result.
func Execute(code string, opts ...Option) (string, error) {
	return NewSession(opts...).Run(code)
}

// ExecuteFile reads an assembly file and executes it.
func ExecuteFile(path string, opts ...Option) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Execute(string(data), opts...)
}

// ExecuteBytecode runs a serialized program.
func ExecuteBytecode(data []byte, opts ...Option) (string, error) {
	program, err := vvm.Deserialize(data)
	if err != nil {
		return "", err
	}
	return NewSession(opts...).RunProgram(program)
}

// Session holds a machine across executions. State registers written
// by one Run stay visible to the next, so a host can build up tables
// incrementally.
type Session struct {
	machine *vvm.Interpreter
}

// NewSession creates a session with the given options applied.
func NewSession(opts ...Option) *Session {
	options := &Options{
		Source: loader.NewFileSource(),
		Output: os.Stdout,
	}
	for _, opt := range opts {
		opt(options)
	}

	machine := vvm.NewInterpreter()
	machine.SetSource(options.Source)
	machine.SetOutput(options.Output)
	if options.ConsoleRows > 0 && options.ConsoleCols > 0 {
		machine.SetConsoleSize(options.ConsoleRows, options.ConsoleCols)
	}
	return &Session{machine: machine}
}

// Run assembles and executes one chunk of assembly.
func (s *Session) Run(code string) (string, error) {
	program, err := asm.Assemble(code)
	if err != nil {
		return "", err
	}
	return s.machine.Run(program)
}

// RunProgram executes an already assembled program.
func (s *Session) RunProgram(program *vvm.Program) (string, error) {
	return s.machine.Run(program)
}

// Interpreter exposes the underlying machine.
func (s *Session) Interpreter() *vvm.Interpreter {
	return s.machine
}
