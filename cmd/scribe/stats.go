package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats AUTHOR_ID",
	Short: "Aggregate views, likes and per-status counts for one author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loginFromEnv(cmd.Context()); err != nil {
			return err
		}
		result, err := sdk.Stats.AuthorStats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}
