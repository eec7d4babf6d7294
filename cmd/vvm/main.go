// Package main provides the CLI entry point for VVM.
//
// Usage:
//
//	vvm run program.vvm            # Assemble and execute a source file
//	vvm compile program.vvm        # Assemble to bytecode (.vvmb)
//	vvm exec program.vvmb          # Execute compiled bytecode
//	vvm disasm program.vvmb        # Disassemble bytecode
//	vvm repl                       # Interactive shell
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/embed"
	"github.com/akhildatla/vvm/pkg/repl"
	"github.com/akhildatla/vvm/pkg/vvm"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = commonlog.GetLogger("vvm")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return printUsage()
	}

	cmd := os.Args[1]

	switch cmd {
	case "run":
		return runCommand(os.Args[2:])
	case "compile":
		return compileCommand(os.Args[2:])
	case "exec":
		return execCommand(os.Args[2:])
	case "disasm":
		return disasmCommand(os.Args[2:])
	case "repl":
		return replCommand(os.Args[2:])
	case "version":
		fmt.Printf("vvm version %s\n", version)
		if commit != "none" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Printf("  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		return printUsage()
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func configureLogging(verbose bool) {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vvm run <file.vvm>")
	}

	configureLogging(*verbose)
	path := fs.Arg(0)
	log.Infof("executing: %s", path)

	result, err := embed.ExecuteFile(path)
	if err != nil {
		return err
	}
	if result != "" {
		fmt.Println(result)
	}
	return nil
}

func compileCommand(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: input with .vvmb extension)")
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vvm compile <file.vvm> [-o output.vvmb]")
	}

	configureLogging(*verbose)
	inputPath := fs.Arg(0)
	outputPath := *output

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".vvmb"
	}

	log.Infof("assembling: %s -> %s", inputPath, outputPath)

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	program, err := asm.Assemble(string(source))
	if err != nil {
		return fmt.Errorf("assembling: %w", err)
	}

	bytecode, err := vvm.Serialize(program)
	if err != nil {
		return fmt.Errorf("serializing: %w", err)
	}

	if err := os.WriteFile(outputPath, bytecode, 0644); err != nil {
		return fmt.Errorf("writing bytecode: %w", err)
	}

	log.Infof("assembled %d words, %d constants, %d types",
		len(program.Instructions), len(program.Constants), len(program.Types))
	fmt.Printf("Compiled: %s (%d bytes)\n", outputPath, len(bytecode))
	return nil
}

func execCommand(args []string) error {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vvm exec <file.vvmb>")
	}

	configureLogging(*verbose)
	path := fs.Arg(0)

	bytecode, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bytecode: %w", err)
	}

	program, err := vvm.Deserialize(bytecode)
	if err != nil {
		return fmt.Errorf("deserializing: %w", err)
	}

	log.Infof("loaded %d words, %d constants, %d types",
		len(program.Instructions), len(program.Constants), len(program.Types))

	result, err := embed.NewSession().RunProgram(program)
	if err != nil {
		return fmt.Errorf("executing: %w", err)
	}
	if result != "" {
		fmt.Println(result)
	}
	return nil
}

func disasmCommand(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vvm disasm <file.vvmb> [-o output.vvm]")
	}

	path := fs.Arg(0)

	bytecode, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bytecode: %w", err)
	}

	program, err := vvm.Deserialize(bytecode)
	if err != nil {
		return fmt.Errorf("deserializing: %w", err)
	}

	text := vvm.Disassemble(program)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Printf("Disassembled to: %s\n", *output)
	} else {
		fmt.Print(text)
	}
	return nil
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	repl.New().Start(os.Stdout)
	return nil
}

func printUsage() error {
	fmt.Println(`VVM - register bytecode machine for vectorized data programs

Usage:
  vvm <command> [arguments]

Commands:
  run <file.vvm>        Assemble and execute a source file
  compile <file.vvm>    Assemble to bytecode (.vvmb)
  exec <file.vvmb>      Execute compiled bytecode
  disasm <file.vvmb>    Disassemble bytecode to assembly
  repl                  Start interactive shell
  version               Print version information
  help                  Show this help message

Run Options:
  -v                    Verbose output

Compile Options:
  -o <file>             Output file (default: input with .vvmb extension)
  -v                    Verbose output

Exec Options:
  -v                    Verbose output

Disasm Options:
  -o <file>             Output file (default: stdout)

Examples:
  vvm run program.vvm
  vvm compile program.vvm -o program.vvmb
  vvm exec program.vvmb
  vvm disasm program.vvmb
  vvm repl`)
	return nil
}
