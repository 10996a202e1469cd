package graft

import "context"

// Kind is a node's syntactic kind — the grammar's discriminator for what a
// node is ("function_declaration", "argument", ...). Kinds compare with ==.
//
// For tree-sitter backed nodes this is the node type string. Type strings are
// the grammar's closed vocabulary and, unlike grammar symbol IDs, stay stable
// across grammar rebuilds, which matters for persisted paths.
type Kind string

// Node is the read-only tree surface the path algorithms consume. A Node
// belongs to some parse tree but the algorithms never need the tree itself:
// kind, parent, and ordered node children are enough.
//
// Children returns node children only — tokens, punctuation, and other
// anonymous syntax are excluded. The slice is in document order.
//
// Implementations must be comparable with ==, and two values must compare
// equal exactly when they denote the same underlying node. Path construction
// relies on this to locate a node among its parent's children.
type Node interface {
	Kind() Kind
	Parent() Node
	Children() []Node
}

// Tree is a handle to a parse tree whose root may be produced lazily.
// Root honors ctx: retrieving the root can involve parsing, and
// implementations should abort with ctx.Err() when the context is done.
//
// Trees are immutable values. Editing source text yields a new Tree; it
// never changes an existing one.
type Tree interface {
	Root(ctx context.Context) (Node, error)
}

// TreeHolder is implemented by Node types that can report the tree they
// belong to. The path algorithms never require it; it exists so callers
// holding only a node can reach the tree-based Resolve entry point.
type TreeHolder interface {
	GoverningTree() Tree
}
