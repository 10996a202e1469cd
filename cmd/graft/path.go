package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/graft"
	"github.com/jward/graft/internal/lang"
)

var pathCmd = &cobra.Command{
	Use:   "path <file> <line> <col>",
	Short: "Print the structural path of the node at a position",
	Long:  "Parses the file and prints the encoded path of the innermost node covering the 0-based position. Needs no database.",
	Args:  cobra.ExactArgs(3),
	RunE:  runPath,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <path> <file>",
	Short: "Resolve an encoded path against a file",
	Long:  "Parses the file and re-locates the node the path describes. Exits nonzero when the path no longer matches — a stale anchor, not a fault.",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

// parseRoot parses file and returns its root node plus the source bytes.
func parseRoot(cmd *cobra.Command, file string) (graft.SitterNode, []byte, error) {
	lg, ok := lang.ForFile(file)
	if !ok {
		return graft.SitterNode{}, nil, fmt.Errorf("unsupported file type: %s", file)
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return graft.SitterNode{}, nil, err
	}
	root, err := graft.NewSourceTree(lg.Grammar, src).Root(cmd.Context())
	if err != nil {
		return graft.SitterNode{}, nil, err
	}
	return root.(graft.SitterNode), src, nil
}

// nodeResult builds the CLI view of a node, with its text truncated to a
// single line.
func nodeResult(file string, src []byte, node graft.SitterNode, path *graft.Path) CLINode {
	raw := node.Raw()
	text := raw.Content(src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "..."
	}
	return CLINode{
		Kind:      string(node.Kind()),
		Path:      path.String(),
		File:      file,
		StartLine: int(raw.StartPoint().Row),
		StartCol:  int(raw.StartPoint().Column),
		EndLine:   int(raw.EndPoint().Row),
		EndCol:    int(raw.EndPoint().Column),
		Text:      text,
	}
}

func runPath(cmd *cobra.Command, args []string) error {
	file, line, col, err := positionArgs(args)
	if err != nil {
		return outputError("path", err)
	}
	root, src, err := parseRoot(cmd, file)
	if err != nil {
		return outputError("path", err)
	}
	node, ok := graft.NodeAt(root, line, col)
	if !ok {
		return outputError("path", fmt.Errorf("no node at %s:%d:%d", file, line, col))
	}
	p := graft.New(node)
	return outputResult(CLIResult{Command: "path", Results: nodeResult(file, src, node, p)})
}

func runResolve(cmd *cobra.Command, args []string) error {
	p, err := graft.ParsePath(args[0])
	if err != nil {
		return outputError("resolve", err)
	}
	file := args[1]
	root, src, err := parseRoot(cmd, file)
	if err != nil {
		return outputError("resolve", err)
	}
	node, ok := graft.ResolveAs[graft.SitterNode](p, root)
	if !ok {
		return outputError("resolve", fmt.Errorf("path does not resolve in %s", file))
	}
	return outputResult(CLIResult{Command: "resolve", Results: nodeResult(file, src, node, p)})
}
