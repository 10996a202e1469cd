package graft

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker, err := NewTracker(filepath.Join(t.TempDir(), "anchors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tracker.Close() })
	return tracker
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTracker_AnchorRecordsPathAndSpan(t *testing.T) {
	tracker := newTestTracker(t)
	dir := t.TempDir()
	file := writeTestFile(t, dir, "sample.go", "package p\n\nfunc Alpha() {}\n\nfunc Beta() {}\n")

	// Position of the 'A' in Alpha.
	a, err := tracker.Anchor(context.Background(), file, 2, 5, "diag-1")
	require.NoError(t, err)
	assert.Equal(t, "identifier", a.Kind)
	assert.Equal(t, "diag-1", a.Tag)
	assert.Equal(t, 2, a.StartLine)
	assert.Equal(t, 5, a.StartCol)
	assert.NotEmpty(t, a.Path)
	assert.False(t, a.Stale)

	anchors, err := tracker.List(file)
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, a.ID, anchors[0].ID)
}

func TestTracker_AnchorUnsupportedFile(t *testing.T) {
	tracker := newTestTracker(t)
	file := writeTestFile(t, t.TempDir(), "notes.txt", "hello")

	_, err := tracker.Anchor(context.Background(), file, 0, 0, "")
	assert.Error(t, err)
}

func TestTracker_RebaseAfterTriviaEdit(t *testing.T) {
	tracker := newTestTracker(t)
	dir := t.TempDir()
	file := writeTestFile(t, dir, "sample.go", "package p\n\nfunc Alpha() {}\n")

	a, err := tracker.Anchor(context.Background(), file, 2, 5, "")
	require.NoError(t, err)
	require.Equal(t, 2, a.StartLine)

	// A comment above the function shifts lines but not structure.
	writeTestFile(t, dir, "sample.go", "package p\n\n// Alpha is documented now.\nfunc Alpha() {}\n")

	results, err := tracker.Rebase(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Resolved)
	assert.Equal(t, 3, results[0].Anchor.StartLine)
	assert.False(t, results[0].Anchor.Stale)

	// The update is persisted.
	anchors, err := tracker.List(file)
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, 3, anchors[0].StartLine)
}

func TestTracker_RebaseMarksRemovedNodesStale(t *testing.T) {
	tracker := newTestTracker(t)
	dir := t.TempDir()
	file := writeTestFile(t, dir, "sample.go", "package p\n\nfunc Alpha() {}\n\nfunc Beta() {}\n")

	_, err := tracker.Anchor(context.Background(), file, 2, 5, "alpha")
	require.NoError(t, err)
	_, err = tracker.Anchor(context.Background(), file, 4, 5, "beta")
	require.NoError(t, err)

	// Beta is gone; the anchor to "the 2nd function" has nowhere to go.
	// Alpha's anchor still fits.
	writeTestFile(t, dir, "sample.go", "package p\n\nfunc Alpha() {}\n")

	results, err := tracker.Rebase(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byTag := map[string]RebaseResult{}
	for _, r := range results {
		byTag[r.Anchor.Tag] = r
	}
	assert.True(t, byTag["alpha"].Resolved)
	require.False(t, byTag["beta"].Resolved)
	assert.True(t, byTag["beta"].Anchor.Stale)

	// Stale anchors are kept, not deleted.
	anchors, err := tracker.List(file)
	require.NoError(t, err)
	assert.Len(t, anchors, 2)
}

func TestTracker_RebaseNoAnchors(t *testing.T) {
	tracker := newTestTracker(t)
	file := writeTestFile(t, t.TempDir(), "sample.go", "package p\n")

	results, err := tracker.Rebase(context.Background(), file)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTracker_RebaseHonorsCancellation(t *testing.T) {
	tracker := newTestTracker(t)
	dir := t.TempDir()
	file := writeTestFile(t, dir, "sample.go", "package p\n\nfunc Alpha() {}\n")

	_, err := tracker.Anchor(context.Background(), file, 2, 5, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tracker.Rebase(ctx, file)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTracker_ListAllAndRemove(t *testing.T) {
	tracker := newTestTracker(t)
	dir := t.TempDir()
	f1 := writeTestFile(t, dir, "a.go", "package p\n\nfunc Alpha() {}\n")
	f2 := writeTestFile(t, dir, "b.go", "package p\n\nfunc Beta() {}\n")

	a1, err := tracker.Anchor(context.Background(), f1, 2, 5, "")
	require.NoError(t, err)
	_, err = tracker.Anchor(context.Background(), f2, 2, 5, "")
	require.NoError(t, err)

	all, err := tracker.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, tracker.Remove(a1.ID))
	all, err = tracker.List("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, f2, all[0].FilePath)
}

func TestTracker_WithLanguagesFilter(t *testing.T) {
	tracker, err := NewTracker(filepath.Join(t.TempDir(), "anchors.db"), WithLanguages("python"))
	require.NoError(t, err)
	t.Cleanup(func() { tracker.Close() })

	file := writeTestFile(t, t.TempDir(), "sample.go", "package p\n\nfunc Alpha() {}\n")
	_, err = tracker.Anchor(context.Background(), file, 2, 5, "")
	assert.Error(t, err)
}
