package main

import "github.com/jward/graft"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLINode is a JSON-friendly view of a located node.
type CLINode struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	File      string `json:"file,omitempty"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	Text      string `json:"text,omitempty"`
}

// CLIAnchor is a JSON-friendly view of a stored anchor. Resolved is set on
// rebase output only.
type CLIAnchor struct {
	ID        int64  `json:"id"`
	File      string `json:"file"`
	Tag       string `json:"tag,omitempty"`
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	Stale     bool   `json:"stale"`
	Resolved  *bool  `json:"resolved,omitempty"`
}

func toCLIAnchor(a graft.Anchor) CLIAnchor {
	return CLIAnchor{
		ID:        a.ID,
		File:      a.FilePath,
		Tag:       a.Tag,
		Path:      a.Path,
		Kind:      a.Kind,
		StartLine: a.StartLine,
		StartCol:  a.StartCol,
		EndLine:   a.EndLine,
		EndCol:    a.EndCol,
		Stale:     a.Stale,
	}
}

func toCLIAnchors(anchors []graft.Anchor) []CLIAnchor {
	out := make([]CLIAnchor, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, toCLIAnchor(a))
	}
	return out
}
