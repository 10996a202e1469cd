package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "graft",
	Short:         "Durable structural anchors for syntax trees",
	Long:          "Graft records nodes of a parse tree as structural paths and re-locates them after the source was edited and re-parsed.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .graft/anchors.db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rebaseCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(selectCmd)
}

// dbPath resolves the database location and ensures its directory exists.
func dbPath() (string, error) {
	path := flagDB
	if path == "" {
		path = filepath.Join(".graft", "anchors.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return path, nil
}

// parseIntArg parses a positional integer argument.
func parseIntArg(s, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, s)
	}
	return v, nil
}

// positionArgs parses the common "<file> <line> <col>" argument triple.
// Line and column are 0-based.
func positionArgs(args []string) (file string, line, col int, err error) {
	file = args[0]
	line, err = parseIntArg(args[1], "line")
	if err != nil {
		return "", 0, 0, err
	}
	col, err = parseIntArg(args[2], "col")
	if err != nil {
		return "", 0, 0, err
	}
	return file, line, col, nil
}
