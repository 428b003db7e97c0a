package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revet-dev/revet-core"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline [path]",
	Short: "Run the fleet and save its finding set as the new suppression baseline",
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
		if err != nil {
			return fmt.Errorf("baseline: analyze: %w", err)
		}
		if err := eng.SaveBaseline(log); err != nil {
			return fmt.Errorf("baseline: save: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d finding(s) to baseline\n", len(log.Findings))
		return nil
	},
}
