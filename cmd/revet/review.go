package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revet-dev/revet-core"
)

var flagBase string

var reviewCmd = &cobra.Command{
	Use:   "review [path]",
	Short: "Run the fleet and annotate findings with dependent-impact counts",
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

		log, err := eng.Review(context.Background(), flagBase)
		if err != nil && log == nil {
			return err
		}
		printRunLog(cmd, log, flagFormat)
		if err != nil {
			errorHandled = true
			return fmt.Errorf("review: %w", err)
		}
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [path]",
	Short: "Run the fleet, keeping only findings on lines changed since a base ref",
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

		log, err := eng.Diff(context.Background(), flagBase)
		if err != nil && log == nil {
			return err
		}
		printRunLog(cmd, log, flagFormat)
		if err != nil {
			errorHandled = true
			return fmt.Errorf("diff: %w", err)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&flagBase, "base", "HEAD~1", "git base reference to diff against")
	diffCmd.Flags().StringVar(&flagBase, "base", "HEAD~1", "git base reference to diff against")
}
