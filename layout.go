package sexpfmt

import (
	"strings"

	"github.com/muesli/reflow/ansi"
)

// DefaultWidth is the column budget used when a request leaves Width unset.
const DefaultWidth = 80

// indentStep is the fixed indent added per breaking level. Indentation is
// never aligned to the opening parenthesis or the head token.
const indentStep = 2

var spaceString = strings.Repeat(" ", 256)

// inlineWidth returns the display width of n rendered on one line: an atom
// measures as its printable width, a list as its parentheses plus children
// plus one separating space per adjacent pair.
func inlineWidth(n Node) int {
	if n.Kind == KindAtom {
		return ansi.PrintableRuneWidth(n.Text)
	}
	w := 2
	for i, c := range n.Children {
		if i > 0 {
			w++
		}
		w += inlineWidth(c)
	}
	return w
}

// printer accumulates the formatted output for one document.
type printer struct {
	buf   []byte
	width int
}

func (p *printer) reset(width int) {
	p.buf = p.buf[:0]
	p.width = width
}

// render writes n at the given left-margin column. A node that fits within
// the width budget at that column is written inline; a list that does not is
// broken across lines, children indented one step deeper. The fits test is
// re-evaluated per subtree at its actual column.
func (p *printer) render(n Node, indent int) {
	if n.Kind == KindAtom {
		p.buf = append(p.buf, n.Text...)
		return
	}
	if indent+inlineWidth(n) <= p.width {
		p.inline(n)
		return
	}
	p.buf = append(p.buf, '(')
	if len(n.Children) == 0 {
		p.buf = append(p.buf, ')')
		return
	}
	rest := n.Children
	if head := n.Children[0]; head.Kind == KindAtom {
		// An atom head stays on the opening line; a list head goes on its
		// own line below, like any other child.
		p.buf = append(p.buf, head.Text...)
		rest = n.Children[1:]
	}
	for _, c := range rest {
		p.newline(indent + indentStep)
		p.render(c, indent+indentStep)
	}
	p.buf = append(p.buf, ')')
}

func (p *printer) inline(n Node) {
	if n.Kind == KindAtom {
		p.buf = append(p.buf, n.Text...)
		return
	}
	p.buf = append(p.buf, '(')
	for i, c := range n.Children {
		if i > 0 {
			p.buf = append(p.buf, ' ')
		}
		p.inline(c)
	}
	p.buf = append(p.buf, ')')
}

func (p *printer) newline(indent int) {
	p.buf = append(p.buf, '\n')
	for indent > 0 {
		n := indent
		if n > len(spaceString) {
			n = len(spaceString)
		}
		p.buf = append(p.buf, spaceString[:n]...)
		indent -= n
	}
}
