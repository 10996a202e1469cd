package graft

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// SitterNode adapts a tree-sitter node to the Node interface. Node children
// are the named children, which excludes anonymous tokens and punctuation —
// exactly the population path ordinals are counted over. Kind is the node's
// type string.
//
// SitterNode is comparable: two values are equal when they wrap the same
// underlying node of the same tree handle. go-tree-sitter caches node
// wrappers per tree, so nodes reached via Parent and NamedChild compare
// equal whenever they denote the same syntax node.
type SitterNode struct {
	n *sitter.Node
	t Tree // governing tree when known; nil for bare-wrapped nodes
}

// WrapNode adapts a tree-sitter node. Returns nil for a nil node. Nodes
// wrapped this way have no governing tree; use a SourceTree or WrapTree
// when GoverningTree matters.
func WrapNode(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	return SitterNode{n: n}
}

// Kind returns the node's type string.
func (s SitterNode) Kind() Kind { return Kind(s.n.Type()) }

// Parent returns the parent node, or nil at the root.
func (s SitterNode) Parent() Node {
	p := s.n.Parent()
	if p == nil {
		return nil
	}
	return SitterNode{n: p, t: s.t}
}

// Children returns the named children in document order.
func (s SitterNode) Children() []Node {
	count := int(s.n.NamedChildCount())
	if count == 0 {
		return nil
	}
	out := make([]Node, count)
	for i := 0; i < count; i++ {
		out[i] = SitterNode{n: s.n.NamedChild(i), t: s.t}
	}
	return out
}

// GoverningTree returns the tree this node was obtained from, or nil when
// the node was wrapped bare. Implements TreeHolder.
func (s SitterNode) GoverningTree() Tree { return s.t }

// Raw returns the underlying tree-sitter node.
func (s SitterNode) Raw() *sitter.Node { return s.n }

// NodeAt returns the innermost named node covering the 0-based position.
func NodeAt(n SitterNode, line, col int) (SitterNode, bool) {
	pt := sitter.Point{Row: uint32(line), Column: uint32(col)}
	d := n.n.NamedDescendantForPointRange(pt, pt)
	if d == nil {
		return SitterNode{}, false
	}
	return SitterNode{n: d, t: n.t}, true
}

// SourceTree is an immutable (source, grammar) pair that parses lazily on
// first Root call. Edits produce a new SourceTree; an existing one never
// changes, so paths resolved against one generation are unaffected by later
// edits.
type SourceTree struct {
	grammar *sitter.Language
	src     []byte

	mu   sync.Mutex
	tree *sitter.Tree
}

// NewSourceTree creates a tree over src for the given grammar. The source
// is copied; parsing is deferred until Root is called.
func NewSourceTree(grammar *sitter.Language, src []byte) *SourceTree {
	return &SourceTree{grammar: grammar, src: append([]byte(nil), src...)}
}

// Root parses the source if it has not been parsed yet and returns the root
// node. Parsing honors ctx; concurrent callers share one parse.
func (t *SourceTree) Root(ctx context.Context) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tree == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parser := sitter.NewParser()
		defer parser.Close()
		parser.SetLanguage(t.grammar)
		tree, err := parser.ParseCtx(ctx, nil, t.src)
		if err != nil {
			return nil, fmt.Errorf("graft: parse: %w", err)
		}
		t.tree = tree
	}
	return SitterNode{n: t.tree.RootNode(), t: t}, nil
}

// Edit returns a new SourceTree over the edited source. The receiver is
// unchanged.
func (t *SourceTree) Edit(src []byte) *SourceTree {
	return NewSourceTree(t.grammar, src)
}

// Source returns a copy of the tree's source text.
func (t *SourceTree) Source() []byte {
	return append([]byte(nil), t.src...)
}

// sitterTree adapts an already-parsed tree-sitter tree.
type sitterTree struct {
	t *sitter.Tree
}

// WrapTree adapts a parsed tree-sitter tree to the Tree interface.
func WrapTree(t *sitter.Tree) Tree { return sitterTree{t} }

func (w sitterTree) Root(ctx context.Context) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SitterNode{n: w.t.RootNode(), t: w}, nil
}
