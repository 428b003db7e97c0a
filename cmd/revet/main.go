// Command revet is the thin CLI front end around the embeddable core in
// github.com/revet-dev/revet-core. Per the core's own scope (config
// loading, output formatting, and argument parsing are all external
// collaborators), this binary owns exactly those three things and
// nothing else: it builds a Config from flags, calls into the Engine,
// and prints a RunLog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errorHandled is set by commands that already printed a tailored error
// message, so main() doesn't double-print cobra's generic one.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var (
	flagFormat  string
	flagModules []string
)

var rootCmd = &cobra.Command{
	Use:           "revet",
	Short:         "Deterministic, multi-language static review",
	Long:          "revet indexes a repository into a language-neutral dependency graph and runs a fixed analyzer fleet over it, filtered to what matters for the current change.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringSliceVar(&flagModules, "modules", nil, "analyzer families to enable (default: all known families)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(runsCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid --format %q: must be json or text", format)
	}
}
