// Package graft provides durable structural anchors for syntax trees. An
// anchor — a [Path] — records a node's position in the tree's shape, so the
// "same" node can be re-located in a different tree instance after the
// source was edited and re-parsed.
//
// # Why paths
//
// Parse trees are immutable values: editing source text produces a new tree,
// and plain node references go stale the moment the text changes. A Path
// instead records the node's ancestor chain as (kind, ordinal) frames, where
// the ordinal ranks the node among its parent's children of the same kind.
// Counting per kind is what makes the anchor survive unrelated insertions:
// adding a field before the second method does not change which node is "the
// 2nd method_declaration".
//
// The match is deliberately approximate. It finds the node occupying the
// same structural slot, not necessarily the original node, and it fails —
// as an ordinary outcome, not an error — when the slot is gone: a removed
// argument, a declaration changed to a different kind.
//
// # Usage
//
// Build a path from a node, edit, resolve against the new generation:
//
//	tree := graft.NewSourceTree(grammar, src)
//	root, err := tree.Root(ctx)
//	node, _ := graft.NodeAt(root.(graft.SitterNode), 10, 5)
//	path := graft.New(node)
//
//	edited, err := tree.Edit(newSrc).Root(ctx)
//	if found, ok := path.TryResolve(edited); ok {
//	    // found occupies the same structural slot in the new tree
//	}
//
// [ResolveAs] adds a concrete-type requirement on the result, and
// [Path.Resolve] runs against a [Tree] with cooperative cancellation.
//
// # Persistence
//
// Paths encode to text ([Path.String], [ParsePath]) and a [Tracker] keeps
// them in SQLite: [Tracker.Anchor] records a position, [Tracker.Rebase]
// re-resolves every stored anchor after a file changed and marks the ones
// that no longer fit as stale.
//
// # Tree model
//
// The algorithms see trees only through the [Node] and [Tree] interfaces.
// [SitterNode] and [SourceTree] adapt tree-sitter, with named children as
// the node population; any parse tree with kinds, parents, and ordered node
// children can implement the interfaces instead.
package graft
