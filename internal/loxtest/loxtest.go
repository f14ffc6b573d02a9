// Package loxtest implements utilities for testing golox against the corpus of .lox files defined under a testdata
// directory. A test file's expected behaviour is recorded in "// prints: " and "// error: " comments; calling [Run]
// with update set regenerates them from the interpreter's actual output.
package loxtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

var syntaxErrorComment = "// syntaxerror"

// Option configures [Run].
type Option func(*config)

// WithSkipSyntaxErrors configures whether files beginning with a `// syntaxerror` comment are skipped. Such a file
// can't be parsed into a single program, so it has no single expected stdout/stderr to compare against.
func WithSkipSyntaxErrors(enabled bool) Option {
	return func(c *config) { c.SkipSyntaxErrors = enabled }
}

// Runner defines how a test is run or its expected output updated.
type Runner interface {
	// Test runs the test for the .lox file at path, failing t if the actual output doesn't match the expected
	// output recorded in the file's comments.
	Test(t *testing.T, path string)
	// Update regenerates the expected-output comments in the .lox file at path from the interpreter's actual
	// output.
	Update(t *testing.T, path string)
}

type config struct {
	SkipSyntaxErrors bool
}

// Run runs or updates a test for each .lox file under testdataDir. By default, Runner.Test is called in a subtest
// for each file; if update is true, Runner.Update is called instead. Subtests run in parallel.
func Run(t *testing.T, runner Runner, testdataDir string, update bool, opts ...Option) {
	cfg := &config{SkipSyntaxErrors: true}
	for _, opt := range opts {
		opt(cfg)
	}
	run(t, runner, testdataDir, update, cfg)
}

func run(t *testing.T, runner Runner, dir string, update bool, cfg *config) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range matches {
		testName := snakeToPascalCase(filepath.Base(path))
		if filepath.Ext(path) == ".lox" {
			if cfg.SkipSyntaxErrors {
				contents, err := os.ReadFile(path)
				if err != nil {
					t.Fatal(err)
				}
				if bytes.HasPrefix(contents, []byte(syntaxErrorComment)) {
					continue
				}
			}

			testName = strings.TrimSuffix(testName, ".lox")
			t.Run(testName, func(t *testing.T) {
				t.Parallel()
				if update {
					runner.Update(t, path)
				} else {
					runner.Test(t, path)
				}
			})
		} else {
			t.Run(testName, func(t *testing.T) {
				t.Parallel()
				run(t, runner, path, update, cfg)
			})
		}
	}
}

func snakeToPascalCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// ComputeDiff returns a human-readable report of the differences between a wanted and got value.
func ComputeDiff(want, got any) string {
	diff := cmp.Diff(want, got, cmp.Transformer("BytesToString", func(b []byte) string {
		return string(b)
	}))
	return "want -\ngot +\n" + diff
}

// ComputeTextDiff returns a human-readable unified diff between a wanted and got string.
func ComputeTextDiff(want, got string) string {
	edits := myers.ComputeEdits(span.URIFromPath("want"), want, got)
	return fmt.Sprint(gotextdiff.ToUnified("want", "got", want, edits))
}

// ParseComments extracts the first capture group of every match of commentPattern in fileContents.
func ParseComments(fileContents []byte, commentPattern *regexp.Regexp) [][]byte {
	var lines [][]byte
	for _, match := range commentPattern.FindAllSubmatch(fileContents, -1) {
		line := match[1]
		if bytes.Equal(line, []byte("<empty>")) {
			line = []byte{}
		}
		lines = append(lines, line)
	}
	return lines
}

// MustUpdateComments rewrites the capture group of every match of commentPattern in fileContents with the
// corresponding entry of lines, which must be the same length as the number of matches.
func MustUpdateComments(t *testing.T, filePath string, fileContents []byte, commentPattern *regexp.Regexp, lines [][]byte) []byte {
	matches := commentPattern.FindAllSubmatchIndex(fileContents, -1)
	if len(lines) != len(matches) {
		t.Fatalf(`%d "%s" %s found in %s but %d %s output, these should be equal`,
			len(matches), commentPattern, pluralise("comment", len(matches)), filePath, len(lines), pluralise("line", len(lines)))
	}
	if len(lines) == 0 {
		return fileContents
	}

	var b bytes.Buffer
	lastEnd := 0
	for i, match := range matches {
		start, end := match[2], match[3]
		b.Write(fileContents[lastEnd:start])
		if len(lines[i]) == 0 {
			b.WriteString("<empty>")
		} else {
			b.Write(lines[i])
		}
		lastEnd = end
	}
	b.Write(fileContents[lastEnd:])

	return b.Bytes()
}

func pluralise(s string, n int) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
