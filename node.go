package sexpfmt

import "strings"

// NodeKind discriminates the two node shapes.
type NodeKind uint8

const (
	// KindAtom is a leaf carrying text.
	KindAtom NodeKind = iota
	// KindList is an interior node carrying ordered children.
	KindList
)

// Node is one parsed S-expression: either an atom or a list. Children are
// kept in source order and atom text is kept byte for byte; formatting only
// ever changes the whitespace around nodes, never the nodes themselves.
type Node struct {
	Kind     NodeKind
	Text     string // atom text, set when Kind is KindAtom
	Children []Node // list children, set when Kind is KindList
}

// Atom returns an atom node with the given text.
func Atom(text string) Node {
	return Node{Kind: KindAtom, Text: text}
}

// List returns a list node with the given children.
func List(children ...Node) Node {
	return Node{Kind: KindList, Children: children}
}

// String returns the inline rendering of the node: an atom as its text, a
// list parenthesized with a single space between children.
func (n Node) String() string {
	var sb strings.Builder
	n.appendTo(&sb)
	return sb.String()
}

func (n Node) appendTo(sb *strings.Builder) {
	if n.Kind == KindAtom {
		sb.WriteString(n.Text)
		return
	}
	sb.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.appendTo(sb)
	}
	sb.WriteByte(')')
}
