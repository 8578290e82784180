package sexpfmt

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrEmptyInput reports input containing no expression.
	ErrEmptyInput = errors.New("empty input: no expression found")
	// ErrUnmatchedOpenParen reports input ending with unclosed lists.
	ErrUnmatchedOpenParen = errors.New("unmatched opening parenthesis")
	// ErrUnmatchedCloseParen reports a closing parenthesis with no open list.
	ErrUnmatchedCloseParen = errors.New("unmatched closing parenthesis")
)

// Position is a location in the input text.
type Position struct {
	Line   int // 1-based line
	Column int // 1-based column, counted in runes
	Offset int // byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError is a parse failure with the position it occurred at. It wraps
// one of the sentinel parse errors, so errors.Is works against those.
type ParseError struct {
	Err error
	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Err, e.Pos)
}

func (e *ParseError) Unwrap() error { return e.Err }

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenOpen
	tokenClose
	tokenAtom
)

// token is a lexical unit: `(`, `)`, or an atom. The position is carried
// only so parse failures can point at the offending input.
type token struct {
	kind tokenKind
	text string
	pos  Position
}

// scanner walks the input rune by rune, tracking line and column.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1, col: 1}
}

// next returns the following token, or a tokenEOF at end of input.
// Whitespace separates tokens and is never part of one; parentheses are
// single-character tokens; any other maximal run of non-whitespace,
// non-parenthesis characters is one atom.
func (s *scanner) next() token {
	s.skipSpace()
	start := Position{Line: s.line, Column: s.col, Offset: s.pos}
	if s.pos >= len(s.src) {
		return token{kind: tokenEOF, pos: start}
	}
	switch s.src[s.pos] {
	case '(':
		s.pos++
		s.col++
		return token{kind: tokenOpen, pos: start}
	case ')':
		s.pos++
		s.col++
		return token{kind: tokenClose, pos: start}
	}
	begin := s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if r == '(' || r == ')' || unicode.IsSpace(r) {
			break
		}
		s.pos += size
		s.col++
	}
	return token{kind: tokenAtom, text: s.src[begin:s.pos], pos: start}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		if r == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
		s.pos += size
	}
}

// Parse consumes the entire input and returns its top-level forms in order.
// It is a single pass with an explicit stack of open lists, so nesting depth
// is bounded by memory rather than by the goroutine stack.
func Parse(src []byte) ([]Node, error) {
	s := newScanner(string(src))
	var (
		roots   []Node
		stack   []Node
		openPos []Position
	)
	for {
		tok := s.next()
		switch tok.kind {
		case tokenEOF:
			if len(stack) > 0 {
				return nil, &ParseError{Err: ErrUnmatchedOpenParen, Pos: openPos[len(openPos)-1]}
			}
			if len(roots) == 0 {
				return nil, &ParseError{Err: ErrEmptyInput, Pos: tok.pos}
			}
			return roots, nil
		case tokenOpen:
			stack = append(stack, Node{Kind: KindList})
			openPos = append(openPos, tok.pos)
		case tokenClose:
			if len(stack) == 0 {
				return nil, &ParseError{Err: ErrUnmatchedCloseParen, Pos: tok.pos}
			}
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			openPos = openPos[:len(openPos)-1]
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.Children = append(top.Children, done)
			} else {
				roots = append(roots, done)
			}
		case tokenAtom:
			leaf := Node{Kind: KindAtom, Text: tok.text}
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.Children = append(top.Children, leaf)
			} else {
				roots = append(roots, leaf)
			}
		}
	}
}
