package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatNodeText formats a located node as readable text.
func formatNodeText(w io.Writer, n CLINode) {
	fmt.Fprintf(w, "%s %s:%d:%d-%d:%d\n", n.Kind, n.File, n.StartLine, n.StartCol, n.EndLine, n.EndCol)
	fmt.Fprintf(w, "path: %s\n", n.Path)
	if n.Text != "" {
		fmt.Fprintf(w, "text: %s\n", n.Text)
	}
}

// formatAnchorsText formats anchors as aligned columns.
func formatAnchorsText(w io.Writer, anchors []CLIAnchor) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tTAG\tKIND\tSPAN\tSTATUS\tPATH")
	for _, a := range anchors {
		status := "ok"
		if a.Stale {
			status = "stale"
		}
		if a.Resolved != nil {
			if *a.Resolved {
				status = "resolved"
			} else {
				status = "stale"
			}
		}
		span := fmt.Sprintf("%d:%d-%d:%d", a.StartLine, a.StartCol, a.EndLine, a.EndCol)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.File, a.Tag, a.Kind, span, status, a.Path)
	}
	tw.Flush()
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case CLINode:
		formatNodeText(w, v)
	case []CLINode:
		for _, n := range v {
			formatNodeText(w, n)
		}
	case []CLIAnchor:
		formatAnchorsText(w, v)
	case CLIAnchor:
		formatAnchorsText(w, []CLIAnchor{v})
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
