// Command golox is the entry point for the Lox interpreter: it runs a script file, a program passed with -c, or an
// interactive REPL.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/chzyer/readline"

	"golox/ast"
	"golox/interpreter"
	"golox/lexer"
	"golox/loxerror"
	"golox/parser"
	"golox/resolver"
)

var (
	cmd      = flag.String("c", "", "Program passed in as a string")
	printAST = flag.Bool("p", false, "Print the parsed AST instead of running it")
)

// Exit codes, per the CLI contract: 0 success, 64 usage error, 65 compile-time error, 70 runtime error.
const (
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
)

// nolint:revive
func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: golox [options] [script]\n\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *cmd != "" {
		reporter := loxerror.New(os.Stderr)
		run([]byte(*cmd), interpreter.New(os.Stdout, reporter), reporter)
		os.Exit(exitCode(reporter))
	}

	switch len(flag.Args()) {
	case 0:
		runREPL()
	case 1:
		runFile(flag.Arg(0))
	default:
		flag.Usage()
		os.Exit(exitUsage)
	}
}

// run scans, parses, resolves, and interprets src using the given interpreter and reporter. It returns having done
// as much of the pipeline as possible: a compile error in one phase skips the phases after it but doesn't panic.
func run(src []byte, interp *interpreter.Interpreter, reporter *loxerror.Reporter) {
	l := lexer.New(src, reporter)
	p := parser.New(l, reporter)
	program := p.Parse()
	if *printAST {
		ast.Print(program)
		return
	}
	if reporter.HadError {
		return
	}

	depths := resolver.Resolve(program, reporter)
	if reporter.HadError {
		return
	}

	interp.Interpret(program, depths)
}

func exitCode(reporter *loxerror.Reporter) int {
	switch {
	case reporter.HadError:
		return exitCompile
	case reporter.HadRuntimeError:
		return exitRuntime
	default:
		return 0
	}
}

func runFile(name string) {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	reporter := loxerror.New(os.Stderr)
	run(src, interpreter.New(os.Stdout, reporter), reporter)
	os.Exit(exitCode(reporter))
}

func runREPL() {
	cfg := &readline.Config{Prompt: "> "}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".lox_history")
	} else {
		fmt.Fprintf(os.Stderr, "Can't get current user's home directory (%s). Command history will not be saved.\n", err)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "running Lox REPL: %s\n", err)
		os.Exit(exitUsage)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "Welcome to Lox!")

	reporter := loxerror.New(os.Stderr)
	interp := interpreter.New(os.Stdout, reporter, interpreter.REPLMode())
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "unexpected error from readline: %s\n", err)
			break
		}
		if line == "" {
			break
		}
		reporter.Reset()
		run([]byte(line), interp, reporter)
	}
}
