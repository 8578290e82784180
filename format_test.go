package sexpfmt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, fmt.Errorf("boom") }

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("sink full") }

func TestFormatNilChecks(t *testing.T) {
	err := Format(FormatRequest{})
	if err == nil || !strings.Contains(err.Error(), "reader is nil") {
		t.Fatalf("expected reader nil error, got %v", err)
	}
	err = Format(FormatRequest{Reader: strings.NewReader("(a)")})
	if err == nil || !strings.Contains(err.Error(), "writer is nil") {
		t.Fatalf("expected writer nil error, got %v", err)
	}
}

func TestFormatIOErrors(t *testing.T) {
	var out bytes.Buffer
	err := Format(FormatRequest{Reader: failReader{}, Writer: &out})
	if err == nil || !strings.Contains(err.Error(), "read") {
		t.Fatalf("expected read error, got %v", err)
	}
	err = Format(FormatRequest{Reader: strings.NewReader("(a)"), Writer: failWriter{}})
	if err == nil || !strings.Contains(err.Error(), "write") {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestFormatEndToEnd(t *testing.T) {
	cases := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits inline", "(a b c)", 80, "(a b c)\n"},
		{"whitespace normalized", "( a    b\n  c )", 80, "(a b c)\n"},
		{"single atom", "x", 80, "x\n"},
		{"empty list", "()", 80, "()\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Format(FormatRequest{
				Reader: strings.NewReader(tc.input),
				Writer: &out,
				Width:  tc.width,
			})
			if err != nil {
				t.Fatalf("format: %v", err)
			}
			if out.String() != tc.want {
				t.Fatalf("got %q, want %q", out.String(), tc.want)
			}
		})
	}
}

func TestFormatMultipleForms(t *testing.T) {
	var out bytes.Buffer
	err := Format(FormatRequest{
		Reader: strings.NewReader("(a)(b) c"),
		Writer: &out,
		Width:  80,
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "(a)\n\n(b)\n\nc\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
	if strings.HasSuffix(out.String(), "\n\n") {
		t.Fatalf("trailing blank line in %q", out.String())
	}
}

func TestFormatParseErrorsSurface(t *testing.T) {
	_, err := FormatBytes([]byte("((a)"), 80)
	if !errors.Is(err, ErrUnmatchedOpenParen) {
		t.Fatalf("expected ErrUnmatchedOpenParen, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if _, err := FormatBytes(nil, 80); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestFormatRejectsBinary(t *testing.T) {
	if _, err := FormatBytes([]byte{0xff, 0xfe, 0xfd}, 80); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if _, err := FormatBytes(append([]byte("(a)"), 0x00), 80); !errors.Is(err, ErrBinaryInput) {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestFormatWidthZeroUsesDefault(t *testing.T) {
	src := []byte("(assert (= x (f y z)))")
	got, err := FormatBytes(src, 0)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want, err := FormatBytes(src, DefaultWidth)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("width 0 output %q differs from default width output %q", got, want)
	}
}

func testdataSources(t *testing.T) []string {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "*.sexp"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no testdata sources found")
	}
	return paths
}

func TestFormatIdempotent(t *testing.T) {
	widths := []int{30, 50, 80}
	for _, path := range testdataSources(t) {
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		for _, width := range widths {
			once, err := FormatBytes(src, width)
			if err != nil {
				t.Fatalf("format %s width %d: %v", path, width, err)
			}
			twice, err := FormatBytes(once, width)
			if err != nil {
				t.Fatalf("reformat %s width %d: %v", path, width, err)
			}
			if !bytes.Equal(once, twice) {
				t.Fatalf("%s width %d: formatting is not idempotent\n---once---\n%s\n---twice---\n%s",
					path, width, once, twice)
			}
		}
	}
}

func TestFormatStructuralFidelity(t *testing.T) {
	widths := []int{30, 50, 80}
	for _, path := range testdataSources(t) {
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		before, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		for _, width := range widths {
			out, err := FormatBytes(src, width)
			if err != nil {
				t.Fatalf("format %s width %d: %v", path, width, err)
			}
			after, err := Parse(out)
			if err != nil {
				t.Fatalf("reparse %s width %d: %v", path, width, err)
			}
			if !reflect.DeepEqual(before, after) {
				t.Fatalf("%s width %d: tree changed across formatting", path, width)
			}
		}
	}
}

func TestFormatAtomRoundTrip(t *testing.T) {
	for _, path := range testdataSources(t) {
		src, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		before, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		out, err := FormatBytes(src, 50)
		if err != nil {
			t.Fatalf("format %s: %v", path, err)
		}
		after, err := Parse(out)
		if err != nil {
			t.Fatalf("reparse %s: %v", path, err)
		}
		if got, want := collectAtoms(after), collectAtoms(before); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: atom sequence changed\ngot  %v\nwant %v", path, got, want)
		}
	}
}

// collectAtoms returns atom texts in document order without recursing.
func collectAtoms(nodes []Node) []string {
	var atoms []string
	stack := make([]Node, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Kind == KindAtom {
			atoms = append(atoms, n.Text)
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return atoms
}
