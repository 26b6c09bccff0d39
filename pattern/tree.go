package pattern

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/attunehq/nudge"
)

// SyntaxNode is one node of a parsed tree, flattened for display when
// authoring queries.
type SyntaxNode struct {
	Depth int
	Kind  string

	// Field is the name the parent gives this child, if any.
	Field string
	Named bool
	Span  nudge.Span
}

// Flatten lists every node under root in document order.
func Flatten(root *sitter.Node) []SyntaxNode {
	var nodes []SyntaxNode
	var walk func(n *sitter.Node, depth int, field string)
	walk = func(n *sitter.Node, depth int, field string) {
		nodes = append(nodes, SyntaxNode{
			Depth: depth,
			Kind:  n.Type(),
			Field: field,
			Named: n.IsNamed(),
			Span:  nudge.Span{Start: int(n.StartByte()), End: int(n.EndByte())},
		})
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), depth+1, n.FieldNameForChild(i))
		}
	}
	walk(root, 0, "")
	return nodes
}
