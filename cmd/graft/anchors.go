package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/graft"
)

var flagTag string

var addCmd = &cobra.Command{
	Use:   "add <file> <line> <col>",
	Short: "Store an anchor for the node at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List stored anchors",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var rebaseCmd = &cobra.Command{
	Use:   "rebase <file>...",
	Short: "Re-resolve stored anchors against the files' current content",
	Long:  "Resolves every stored anchor for the given files against a fresh parse. Anchors that still fit get updated spans; the rest are marked stale.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRebase,
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a stored anchor",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	addCmd.Flags().StringVar(&flagTag, "tag", "", "label stored with the anchor")
	selectCmd.Flags().StringVar(&flagTag, "tag", "", "label stored with saved anchors")
}

// openTracker opens the Tracker on the configured database.
func openTracker() (*graft.Tracker, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	return graft.NewTracker(path)
}

func runAdd(cmd *cobra.Command, args []string) error {
	file, line, col, err := positionArgs(args)
	if err != nil {
		return outputError("add", err)
	}
	tracker, err := openTracker()
	if err != nil {
		return outputError("add", err)
	}
	defer tracker.Close()

	a, err := tracker.Anchor(cmd.Context(), file, line, col, flagTag)
	if err != nil {
		return outputError("add", err)
	}
	return outputResult(CLIResult{Command: "add", Results: toCLIAnchor(*a)})
}

func runList(cmd *cobra.Command, args []string) error {
	tracker, err := openTracker()
	if err != nil {
		return outputError("list", err)
	}
	defer tracker.Close()

	file := ""
	if len(args) == 1 {
		file = args[0]
	}
	anchors, err := tracker.List(file)
	if err != nil {
		return outputError("list", err)
	}
	return outputResult(CLIResult{Command: "list", Results: toCLIAnchors(anchors)})
}

func runRebase(cmd *cobra.Command, args []string) error {
	tracker, err := openTracker()
	if err != nil {
		return outputError("rebase", err)
	}
	defer tracker.Close()

	var out []CLIAnchor
	for _, file := range args {
		results, err := tracker.Rebase(cmd.Context(), file)
		if err != nil {
			return outputError("rebase", err)
		}
		for _, r := range results {
			a := toCLIAnchor(r.Anchor)
			resolved := r.Resolved
			a.Resolved = &resolved
			out = append(out, a)
		}
	}
	return outputResult(CLIResult{Command: "rebase", Results: out})
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return outputError("remove", fmt.Errorf("invalid id %q", args[0]))
	}
	tracker, err := openTracker()
	if err != nil {
		return outputError("remove", err)
	}
	defer tracker.Close()

	if err := tracker.Remove(id); err != nil {
		return outputError("remove", err)
	}
	return outputResult(CLIResult{Command: "remove", Results: nil})
}
