// Package sexpfmt pretty-prints S-expressions.
//
// Input is parsed into a tree of atoms and lists, then laid out against a
// column budget: a form that fits on the current line is written inline, a
// form that does not is broken across lines with two more columns of indent
// per nesting level. Atoms pass through byte for byte; only whitespace is
// ever changed, so formatted output parses back to the same tree.
//
// Core properties:
//   - Whitespace-insensitive parsing; atom order and text preserved exactly
//   - Per-subtree fits test at the subtree's actual column
//   - Fixed 2-column indent steps; closing parens cascade onto the last line
//   - Low allocations in hot paths
//
// Example:
//
//	reader := strings.NewReader("(assert (= x (f y z)))\n")
//	err := sexpfmt.Format(sexpfmt.FormatRequest{
//		Reader: reader,
//		Writer: os.Stdout,
//		Width:  80,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
package sexpfmt
