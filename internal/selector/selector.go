// Package selector runs Risor scripts that pick nodes out of a parse tree.
//
// A selector script receives the tree root and helper builtins, and calls
// mark(node) for every node it wants anchored:
//
//	for _, m := range query("(function_declaration name: (identifier) @name)") {
//	    mark(m["name"])
//	}
//
// The marked nodes are returned to the caller in mark order.
package selector

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"
)

// Run evaluates a selector script against a parsed tree and returns the
// nodes the script marked. src is the tree's source text; grammar is needed
// for the query builtin.
func Run(ctx context.Context, source string, root *sitter.Node, src []byte, grammar *sitter.Language) ([]*sitter.Node, error) {
	var marked []*sitter.Node

	rootProxy, err := object.NewProxy(root)
	if err != nil {
		return nil, fmt.Errorf("selector: proxy root: %w", err)
	}

	globals := map[string]any{
		"root":           rootProxy,
		"mark":           makeMarkFn(&marked),
		"node_text":      makeNodeTextFn(src),
		"node_kind":      makeNodeKindFn(),
		"named_children": makeNamedChildrenFn(),
		"query":          makeQueryFn(root, src, grammar),
	}

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	return marked, nil
}

// nodeArg extracts a *sitter.Node from a proxied script argument.
func nodeArg(fn string, arg object.Object) (*sitter.Node, *object.Error) {
	proxy, ok := arg.(*object.Proxy)
	if !ok {
		return nil, object.Errorf("%s: expected a node, got %s", fn, arg.Type())
	}
	node, ok := proxy.Interface().(*sitter.Node)
	if !ok {
		return nil, object.Errorf("%s: expected a node, got %T", fn, proxy.Interface())
	}
	return node, nil
}

// makeMarkFn creates "mark" — records a node as selected.
//
// mark(node) → nil
func makeMarkFn(marked *[]*sitter.Node) *object.Builtin {
	return object.NewBuiltin("mark", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("mark", 1, len(args))
		}
		node, errObj := nodeArg("mark", args[0])
		if errObj != nil {
			return errObj
		}
		*marked = append(*marked, node)
		return object.Nil
	})
}

// makeNodeTextFn creates "node_text".
//
// node_text(node) → string
//
// Exists because Risor's proxy system cannot convert strings to []byte
// for node.Content([]byte).
func makeNodeTextFn(src []byte) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}
		node, errObj := nodeArg("node_text", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(node.Content(src))
	})
}

// makeNodeKindFn creates "node_kind".
//
// node_kind(node) → string
func makeNodeKindFn() *object.Builtin {
	return object.NewBuiltin("node_kind", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_kind", 1, len(args))
		}
		node, errObj := nodeArg("node_kind", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(node.Type())
	})
}

// makeNamedChildrenFn creates "named_children".
//
// named_children(node) → [Node]
func makeNamedChildrenFn() *object.Builtin {
	return object.NewBuiltin("named_children", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("named_children", 1, len(args))
		}
		node, errObj := nodeArg("named_children", args[0])
		if errObj != nil {
			return errObj
		}
		count := int(node.NamedChildCount())
		children := make([]object.Object, 0, count)
		for i := 0; i < count; i++ {
			p, err := object.NewProxy(node.NamedChild(i))
			if err != nil {
				return object.Errorf("named_children: proxy error: %v", err)
			}
			children = append(children, p)
		}
		return object.NewList(children)
	})
}

// makeQueryFn creates "query" — runs a tree-sitter query against the root.
//
// query(pattern) → []map of capture name → Node
func makeQueryFn(root *sitter.Node, src []byte, grammar *sitter.Language) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("query", 1, len(args))
		}
		patternStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("query: pattern must be a string, got %s", args[0].Type())
		}

		q, err := sitter.NewQuery([]byte(patternStr.Value()), grammar)
		if err != nil {
			return object.Errorf("query: invalid pattern: %v", err)
		}
		defer q.Close()

		cursor := sitter.NewQueryCursor()
		defer cursor.Close()
		cursor.Exec(q, root)

		var results []object.Object
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			match = cursor.FilterPredicates(match, src)

			matchMap := make(map[string]object.Object)
			for _, capture := range match.Captures {
				name := q.CaptureNameForId(capture.Index)
				nodeP, err := object.NewProxy(capture.Node)
				if err != nil {
					return object.Errorf("query: proxy error for capture %q: %v", name, err)
				}
				matchMap[name] = nodeP
			}
			results = append(results, object.NewMap(matchMap))
		}

		if results == nil {
			results = []object.Object{}
		}
		return object.NewList(results)
	})
}
