package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revet-dev/revet-core"
)

var runsCmd = &cobra.Command{
	Use:   "runs [path]",
	Short: "List persisted run logs, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		eng, err := revet.New(root, nil)
		if err != nil {
			return err
		}
		defer eng.Close()

		ids, err := eng.RunLogs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}
