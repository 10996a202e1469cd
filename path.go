package graft

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Frame is one level of a Path: "the Ordinal-th child of kind Kind" among a
// parent's node children. Ordinal counts only siblings of the same kind, in
// document order, starting at 0 — it is not the child's absolute position.
// Counting by kind is what lets a path survive insertion of differently
// kinded siblings before the target.
type Frame struct {
	Kind    Kind
	Ordinal int
}

// Path is a durable structural anchor for a node: the node's ancestor chain
// recorded as (kind, ordinal) frames, outermost first. A Path holds no
// reference to the tree or node it was built from, so it can be persisted
// and resolved against any later tree generation.
//
// A Path is an immutable value. It may be shared and resolved concurrently
// without synchronization.
//
// Two distinct nodes can produce colliding paths; resolution finds the node
// occupying the same structural slot, not necessarily the original node.
type Path struct {
	// kind is the kind of the node the path was built from. For non-empty
	// paths it duplicates the last frame's kind; for a path built from a
	// parentless node it is the only shape information recorded.
	kind   Kind
	frames []Frame
}

// New builds the Path for n by walking its ancestor chain. The topmost
// ancestor (the node with no parent) is not recorded as a frame; a path
// built from a parentless node has no frames at all. Construction cannot
// fail and reads only kind/parent/children data.
func New(n Node) *Path {
	p := &Path{kind: n.Kind()}
	for cur := n; cur.Parent() != nil; cur = cur.Parent() {
		p.frames = append(p.frames, Frame{Kind: cur.Kind(), Ordinal: ordinalOf(cur)})
	}
	// Collected innermost-first; stored outermost-first.
	for i, j := 0, len(p.frames)-1; i < j; i, j = i+1, j-1 {
		p.frames[i], p.frames[j] = p.frames[j], p.frames[i]
	}
	return p
}

// ordinalOf counts n's preceding same-kind siblings among its parent's node
// children. If n is somehow absent from its parent's children (a broken Node
// implementation), every same-kind child counts; construction still succeeds.
func ordinalOf(n Node) int {
	ord := 0
	for _, sib := range n.Parent().Children() {
		if sib == n {
			break
		}
		if sib.Kind() == n.Kind() {
			ord++
		}
	}
	return ord
}

// Kind returns the kind of the node the path was built from.
func (p *Path) Kind() Kind { return p.kind }

// Frames returns a copy of the path's frames, outermost first. Empty for a
// path built from a parentless node.
func (p *Path) Frames() []Frame {
	out := make([]Frame, len(p.frames))
	copy(out, p.frames)
	return out
}

// Equal reports whether p and o describe the same structural slot.
func (p *Path) Equal(o *Path) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.kind != o.kind || len(p.frames) != len(o.frames) {
		return false
	}
	for i := range p.frames {
		if p.frames[i] != o.frames[i] {
			return false
		}
	}
	return true
}

// TryResolve re-locates the path's node under root. It walks the frames
// from root, at each level selecting the Ordinal-th child of the frame's
// kind among the current node's children. A missing same-kind child at the
// required ordinal — whether the population shrank or the slot now holds a
// different kind — fails the whole resolution.
//
// A path with no frames resolves to root itself, and only if root's kind
// matches the recorded kind: the zero-frame case is one implicit frame
// describing the original node.
//
// Matching is purely structural and deterministic: no scoring, no
// backtracking. "Not found" is an ordinary outcome, reported as (nil, false).
func (p *Path) TryResolve(root Node) (Node, bool) {
	if root == nil {
		return nil, false
	}
	if len(p.frames) == 0 {
		if root.Kind() != p.kind {
			return nil, false
		}
		return root, true
	}
	cur := root
	for _, f := range p.frames {
		child, ok := nthChildOfKind(cur, f.Kind, f.Ordinal)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// nthChildOfKind selects the ordinal-th child of kind k among n's node
// children, in document order.
func nthChildOfKind(n Node, k Kind, ordinal int) (Node, bool) {
	seen := 0
	for _, c := range n.Children() {
		if c.Kind() != k {
			continue
		}
		if seen == ordinal {
			return c, true
		}
		seen++
	}
	return nil, false
}

// Resolve re-locates the path's node inside t. Retrieving the root may
// involve lazy parsing and honors ctx; cancellation is also observed once
// per frame for long paths. A structural mismatch returns (nil, nil) — it is
// not an error. Cancellation returns ctx.Err().
func (p *Path) Resolve(ctx context.Context, t Tree) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := t.Root(ctx)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	if len(p.frames) == 0 {
		if root.Kind() != p.kind {
			return nil, nil
		}
		return root, nil
	}
	cur := root
	for _, f := range p.frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		child, ok := nthChildOfKind(cur, f.Kind, f.Ordinal)
		if !ok {
			return nil, nil
		}
		cur = child
	}
	return cur, nil
}

// ResolveAs is TryResolve plus a concrete-type requirement on the result:
// resolution succeeds only if the resolved node is a T. The filter changes
// no matching logic — it rejects an otherwise successful match whose node
// has the wrong dynamic type.
func ResolveAs[T Node](p *Path, root Node) (T, bool) {
	var zero T
	n, ok := p.TryResolve(root)
	if !ok {
		return zero, false
	}
	t, ok := n.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// String encodes the path as "kind[ordinal]/.../kind[ordinal]", outermost
// first. A zero-frame path encodes as the bare kind. ParsePath inverts it.
func (p *Path) String() string {
	if len(p.frames) == 0 {
		return string(p.kind)
	}
	var b strings.Builder
	for i, f := range p.frames {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(string(f.Kind))
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(f.Ordinal))
		b.WriteByte(']')
	}
	return b.String()
}

// ParsePath decodes a path produced by String. Kinds containing '/', '[',
// or ']' are not representable and are rejected.
func ParsePath(s string) (*Path, error) {
	if s == "" {
		return nil, fmt.Errorf("parse path: empty")
	}
	if !strings.ContainsRune(s, '[') {
		if strings.ContainsAny(s, "/]") {
			return nil, fmt.Errorf("parse path: malformed segment %q", s)
		}
		return &Path{kind: Kind(s)}, nil
	}
	segs := strings.Split(s, "/")
	frames := make([]Frame, 0, len(segs))
	for _, seg := range segs {
		open := strings.IndexByte(seg, '[')
		if open <= 0 || !strings.HasSuffix(seg, "]") {
			return nil, fmt.Errorf("parse path: malformed segment %q", seg)
		}
		ord, err := strconv.Atoi(seg[open+1 : len(seg)-1])
		if err != nil || ord < 0 {
			return nil, fmt.Errorf("parse path: bad ordinal in segment %q", seg)
		}
		kind := seg[:open]
		if strings.ContainsRune(kind, ']') {
			return nil, fmt.Errorf("parse path: malformed segment %q", seg)
		}
		frames = append(frames, Frame{Kind: Kind(kind), Ordinal: ord})
	}
	return &Path{kind: frames[len(frames)-1].Kind, frames: frames}, nil
}
