package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/graft"
	"github.com/jward/graft/internal/lang"
	"github.com/jward/graft/internal/selector"
)

var (
	flagScript string
	flagSave   bool
)

var selectCmd = &cobra.Command{
	Use:   "select <file>",
	Short: "Run a Risor selector script and print or store the marked nodes",
	Long: `Runs a Risor script against the file's parse tree. The script receives
the tree root and helper builtins (query, node_kind, node_text,
named_children) and calls mark(node) for every node to select. With
--save, each marked node is stored as an anchor.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&flagScript, "script", "", "path to the Risor selector script (required)")
	selectCmd.Flags().BoolVar(&flagSave, "save", false, "store the marked nodes as anchors")
	selectCmd.MarkFlagRequired("script")
}

func runSelect(cmd *cobra.Command, args []string) error {
	file := args[0]
	lg, ok := lang.ForFile(file)
	if !ok {
		return outputError("select", fmt.Errorf("unsupported file type: %s", file))
	}
	script, err := os.ReadFile(flagScript)
	if err != nil {
		return outputError("select", err)
	}
	root, src, err := parseRoot(cmd, file)
	if err != nil {
		return outputError("select", err)
	}

	marked, err := selector.Run(cmd.Context(), string(script), root.Raw(), src, lg.Grammar)
	if err != nil {
		return outputError("select", err)
	}

	if flagSave {
		tracker, err := openTracker()
		if err != nil {
			return outputError("select", err)
		}
		defer tracker.Close()

		var out []CLIAnchor
		for _, raw := range marked {
			node := graft.WrapNode(raw).(graft.SitterNode)
			a, err := tracker.AnchorNode(file, node, flagTag)
			if err != nil {
				return outputError("select", err)
			}
			out = append(out, toCLIAnchor(*a))
		}
		return outputResult(CLIResult{Command: "select", Results: out})
	}

	var out []CLINode
	for _, raw := range marked {
		node := graft.WrapNode(raw).(graft.SitterNode)
		out = append(out, nodeResult(file, src, node, graft.New(node)))
	}
	return outputResult(CLIResult{Command: "select", Results: out})
}
