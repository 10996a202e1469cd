package graft

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jward/graft/internal/lang"
	"github.com/jward/graft/internal/store"
)

// Tracker persists anchors in SQLite and re-seats them as files change. It
// ties the path core to the language registry and the anchor store: Anchor
// records a position as a path, Rebase resolves every stored path against a
// file's current content.
type Tracker struct {
	store     *store.Store
	languages map[string]bool // nil means all languages
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLanguages restricts which languages the Tracker will anchor in.
func WithLanguages(languages ...string) TrackerOption {
	return func(t *Tracker) {
		t.languages = make(map[string]bool, len(languages))
		for _, l := range languages {
			t.languages[l] = true
		}
	}
}

// NewTracker creates a Tracker backed by a SQLite database at dbPath.
func NewTracker(dbPath string, opts ...TrackerOption) (*Tracker, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("graft: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("graft: migrate: %w", err)
	}
	t := &Tracker{store: s}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Close releases the Tracker's database resources.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// Store returns the underlying Store for direct access.
func (t *Tracker) Store() *Store {
	return t.store
}

// parseFile reads and parses file, returning the root node.
func (t *Tracker) parseFile(ctx context.Context, file string) (SitterNode, error) {
	lg, ok := lang.ForFile(file)
	if !ok {
		return SitterNode{}, fmt.Errorf("graft: unsupported file type: %s", file)
	}
	if t.languages != nil && !t.languages[lg.Name] {
		return SitterNode{}, fmt.Errorf("graft: language %s filtered out", lg.Name)
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return SitterNode{}, fmt.Errorf("graft: read file: %w", err)
	}
	root, err := NewSourceTree(lg.Grammar, src).Root(ctx)
	if err != nil {
		return SitterNode{}, err
	}
	return root.(SitterNode), nil
}

// Anchor records the node at a 0-based position in file as a persisted
// anchor and returns the stored record.
func (t *Tracker) Anchor(ctx context.Context, file string, line, col int, tag string) (*Anchor, error) {
	root, err := t.parseFile(ctx, file)
	if err != nil {
		return nil, err
	}
	node, ok := NodeAt(root, line, col)
	if !ok {
		return nil, fmt.Errorf("graft: no node at %s:%d:%d", file, line, col)
	}
	return t.AnchorNode(file, node, tag)
}

// AnchorNode persists an anchor for an already-located node in file.
func (t *Tracker) AnchorNode(file string, node SitterNode, tag string) (*Anchor, error) {
	p := New(node)
	now := time.Now()
	raw := node.Raw()
	a := &store.Anchor{
		FilePath:     file,
		Tag:          tag,
		Path:         p.String(),
		Kind:         string(p.Kind()),
		StartLine:    int(raw.StartPoint().Row),
		StartCol:     int(raw.StartPoint().Column),
		EndLine:      int(raw.EndPoint().Row),
		EndCol:       int(raw.EndPoint().Column),
		CreatedAt:    now,
		LastResolved: now,
	}
	id, err := t.store.InsertAnchor(a)
	if err != nil {
		return nil, fmt.Errorf("graft: %w", err)
	}
	a.ID = id
	return a, nil
}

// RebaseResult reports one anchor's fate after re-resolution.
type RebaseResult struct {
	Anchor   Anchor
	Resolved bool
}

// Rebase re-parses file's current content and resolves every stored anchor
// against the new tree. Hits get their spans updated; misses are marked
// stale but kept. A stale anchor is an expected outcome of editing, never
// an error. Returns one result per anchor.
func (t *Tracker) Rebase(ctx context.Context, file string) ([]RebaseResult, error) {
	anchors, err := t.store.AnchorsByFile(file)
	if err != nil {
		return nil, fmt.Errorf("graft: %w", err)
	}
	if len(anchors) == 0 {
		return nil, nil
	}
	root, err := t.parseFile(ctx, file)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]RebaseResult, 0, len(anchors))
	for _, a := range anchors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := ParsePath(a.Path)
		if err != nil {
			// Undecodable rows are treated like any other unresolvable anchor.
			if err := t.store.MarkStale(a.ID); err != nil {
				return nil, fmt.Errorf("graft: %w", err)
			}
			a.Stale = true
			results = append(results, RebaseResult{Anchor: a})
			continue
		}
		node, ok := ResolveAs[SitterNode](p, root)
		if !ok {
			if err := t.store.MarkStale(a.ID); err != nil {
				return nil, fmt.Errorf("graft: %w", err)
			}
			a.Stale = true
			results = append(results, RebaseResult{Anchor: a})
			continue
		}
		raw := node.Raw()
		a.StartLine = int(raw.StartPoint().Row)
		a.StartCol = int(raw.StartPoint().Column)
		a.EndLine = int(raw.EndPoint().Row)
		a.EndCol = int(raw.EndPoint().Column)
		a.Stale = false
		a.LastResolved = now
		if err := t.store.UpdateAnchorSpan(a.ID, a.StartLine, a.StartCol, a.EndLine, a.EndCol, now); err != nil {
			return nil, fmt.Errorf("graft: %w", err)
		}
		results = append(results, RebaseResult{Anchor: a, Resolved: true})
	}
	return results, nil
}

// List returns stored anchors, for one file or, with an empty file, all of
// them.
func (t *Tracker) List(file string) ([]Anchor, error) {
	if file == "" {
		return t.store.AllAnchors()
	}
	return t.store.AnchorsByFile(file)
}

// Remove deletes one anchor by ID.
func (t *Tracker) Remove(id int64) error {
	return t.store.DeleteAnchor(id)
}
