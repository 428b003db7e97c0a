package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/revet-dev/revet-core"
)

// printRunLog renders a RunLog in the requested format. Per the core's
// own output contract, this is the only place formatting decisions are
// made — the core itself never shapes output.
func printRunLog(cmd *cobra.Command, log *revet.RunLog, format string) {
	w := cmd.OutOrStdout()
	if format == "text" {
		formatRunLogText(w, log)
		return
	}
	formatRunLogJSON(w, log)
}

func formatRunLogJSON(w io.Writer, log *revet.RunLog) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(log)
}

// formatRunLogText formats findings as aligned columns, grounded on the
// teacher CLI's tabwriter-based text renderer (cmd/canopy/format.go).
func formatRunLogText(w io.Writer, log *revet.RunLog) {
	if log == nil {
		return
	}
	fmt.Fprintf(w, "run %s  %d file(s)  %d node(s)  %.2fs\n",
		log.ID, log.FilesAnalyzed, log.NodesParsed, log.DurationSecs)
	fmt.Fprintf(w, "errors=%d warnings=%d info=%d suppressed=%d\n\n",
		log.Summary.Errors, log.Summary.Warnings, log.Summary.Info, log.Summary.Suppressed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tFILE\tLINE\tMESSAGE")
	for _, f := range log.Findings {
		if f.Suppressed {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", f.ID, f.Severity, f.File, f.Line, f.Message)
	}
	tw.Flush()
}
