package main

import (
	"bytes"
	"os"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"golox/interpreter"
	"golox/internal/loxtest"
	"golox/loxerror"
)

var (
	printsRe       = regexp.MustCompile(`// prints: (.+)`)
	errorRe        = regexp.MustCompile(`// error: (.+)`)
	compileErrorRe = regexp.MustCompile(`(?m)^\[line \d+\] Error(?: at '.*?'| at end)?: (.+)$`)
	runtimeErrorRe = regexp.MustCompile(`(?s)^(.+)\n\[line \d+\]\n$`)
)

// TestGolox runs every .lox file under testdata through the interpreter in-process (no subprocess, no go build
// step: forking the binary and diffing its stdout/stderr is the external test-harness concern that's out of scope
// here) and checks its stdout and reported errors against the "// prints: " / "// error: " comments recorded in the
// file. Run with LOXTEST_UPDATE=1 to regenerate those comments from the interpreter's actual output.
func TestGolox(t *testing.T) {
	runner := &runner{}
	update := os.Getenv("LOXTEST_UPDATE") != ""
	loxtest.Run(t, runner, "testdata", update, loxtest.WithSkipSyntaxErrors(false))
}

type runner struct{}

func (r *runner) Test(t *testing.T, path string) {
	want := r.mustParseExpectedResult(t, path)
	got := r.mustRunGolox(t, path)

	if want.ExitCode != got.ExitCode {
		t.Fatalf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", got.ExitCode, want.ExitCode, got.Stdout, got.Stderr)
	}

	if !bytes.Equal(want.Stdout, got.Stdout) {
		t.Errorf("incorrect output printed to stdout:\n%s", loxtest.ComputeTextDiff(string(want.Stdout), string(got.Stdout)))
	}

	if !cmp.Equal(want.Errors, got.Errors) {
		t.Errorf("incorrect errors printed to stderr:\n%s\nstderr:\n%s", loxtest.ComputeDiff(want.Errors, got.Errors), got.Stderr)
	}
}

type goloxResult struct {
	Stdout   []byte
	Stderr   []byte
	Errors   [][]byte
	ExitCode int
}

// mustRunGolox runs the program at path through the same scan/parse/resolve/interpret pipeline main uses, with a
// fresh Interpreter and Reporter so that no state leaks between test files.
func (r *runner) mustRunGolox(t *testing.T, path string) *goloxResult {
	t.Helper()

	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	reporter := loxerror.New(&stderr)
	interp := interpreter.New(&stdout, reporter)
	run(src, interp, reporter)

	return &goloxResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Errors:   parseErrors(stderr.Bytes()),
		ExitCode: exitCode(reporter),
	}
}

// parseErrors extracts the message of each reported error from stderr, whether it's one or more compile errors or a
// single runtime error.
func parseErrors(stderr []byte) [][]byte {
	if matches := compileErrorRe.FindAllSubmatch(stderr, -1); matches != nil {
		var msgs [][]byte
		for _, m := range matches {
			msgs = append(msgs, m[1])
		}
		return msgs
	}
	if m := runtimeErrorRe.FindSubmatch(stderr); m != nil {
		return [][]byte{m[1]}
	}
	return nil
}

func (r *runner) mustParseExpectedResult(t *testing.T, path string) *goloxResult {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	result := &goloxResult{
		Stdout: r.parseExpectedStdout(data),
		Errors: loxtest.ParseComments(data, errorRe),
	}
	if len(result.Errors) > 0 {
		if bytes.HasPrefix(data, []byte("// runtimeerror")) {
			result.ExitCode = 70
		} else {
			result.ExitCode = 65
		}
	}

	return result
}

func (r *runner) parseExpectedStdout(data []byte) []byte {
	var b bytes.Buffer
	for _, line := range loxtest.ParseComments(data, printsRe) {
		b.Write(line)
		b.WriteRune('\n')
	}
	return b.Bytes()
}

func (r *runner) Update(t *testing.T, path string) {
	t.Logf("updating expected output for %s", path)

	result := r.mustRunGolox(t, path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data = loxtest.MustUpdateComments(t, path, data, printsRe, splitLines(result.Stdout))
	data = loxtest.MustUpdateComments(t, path, data, errorRe, result.Errors)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func splitLines(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(b, []byte("\n")), []byte("\n"))
}
