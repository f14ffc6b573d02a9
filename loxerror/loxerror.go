// Package loxerror implements the error reporting session used by all phases of the interpreter: the lexer, the
// parser, the resolver, and the evaluator report through a single [Reporter] rather than returning errors directly,
// so that a phase can accumulate as many diagnostics as possible before the driver decides whether to continue.
package loxerror

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"golox/token"
)

// RuntimeError is raised by the evaluator when a Lox program does something that's type-correct to parse but
// invalid to execute, such as calling a non-callable value or looking up an undefined variable. It carries the
// token whose line is blamed in the error output.
type RuntimeError struct {
	Tok token.Token
	Msg string
}

func (e *RuntimeError) Error() string {
	return e.Msg
}

// NewRuntimeError constructs a [*RuntimeError] with a message built the same way as [fmt.Sprintf].
func NewRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

// Reporter is the process-wide error sink shared by the lexer, parser, resolver, and evaluator. It tracks two sticky
// flags, HadError and HadRuntimeError, which the driver consults after each phase to decide whether to continue and
// what exit code to use.
//
// A Reporter is not safe for concurrent use; the pipeline it serves is single-threaded.
type Reporter struct {
	stderr io.Writer

	HadError        bool
	HadRuntimeError bool
}

// New constructs a Reporter which writes formatted diagnostics to stderr.
func New(stderr io.Writer) *Reporter {
	return &Reporter{stderr: stderr}
}

// Reset clears both sticky flags. Called by the REPL between lines so that an error on one line doesn't poison the
// rest of the session.
func (r *Reporter) Reset() {
	r.HadError = false
	r.HadRuntimeError = false
}

// Report records a compile-time error (from the lexer, parser, or resolver) at the given line. where is appended to
// "Error" as-is; pass "" for a line-only error, " at end" for an error at EOF, or fmt.Sprintf(" at '%s'", lexeme)
// for an error at a specific token.
func (r *Reporter) Report(line int, where, message string) {
	r.HadError = true
	bold := color.New(color.Bold)
	red := color.New(color.Bold, color.FgRed)
	fmt.Fprintf(r.stderr, "[line %d] %s%s: %s\n", line, red.Sprint("Error"), bold.Sprint(where), message)
}

// ReportAtToken reports a compile-time error positioned at tok, choosing the " at end" (for EOF) or " at '<lexeme>'"
// location phrasing based on the token's type, per the parser's error location convention.
func (r *Reporter) ReportAtToken(tok token.Token, message string) {
	var where string
	switch tok.Type {
	case token.EOF:
		where = " at end"
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	r.Report(tok.Line, where, message)
}

// ReportRuntimeError records a runtime error raised by the evaluator.
func (r *Reporter) ReportRuntimeError(err *RuntimeError) {
	r.HadRuntimeError = true
	fmt.Fprintf(r.stderr, "%s\n[line %d]\n", err.Msg, err.Tok.Line)
}
