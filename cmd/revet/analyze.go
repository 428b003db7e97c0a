package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revet-dev/revet-core"
)

var flagFix bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run the full analyzer fleet over a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		eng, err := revet.New(root, buildConfig(flagModules))
		if err != nil {
			return err
		}
		defer eng.Close()

		log, err := eng.Analyze(context.Background(), nil)
		if err != nil && log == nil {
			return err
		}
		printRunLog(cmd, log, flagFormat)

		if flagFix && log != nil {
			report, fixErr := eng.ApplyFixes(log)
			if fixErr != nil {
				errorHandled = true
				return fmt.Errorf("analyze: fix: %w", fixErr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fix: applied %d, skipped %d\n", report.Applied, report.Skipped)
		}

		if err != nil {
			errorHandled = true
			return fmt.Errorf("analyze: %w", err)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagFix, "fix", false, "apply regex-substitution fixes from custom rules in place")
}
