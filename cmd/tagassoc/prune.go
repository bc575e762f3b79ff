package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagassoc/pkg/tagassoc/maintenance"
)

var pruneKeep int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest bundles of each kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := (&maintenance.Pruner{Store: st, Keep: pruneKeep}).Prune(ctx)
		for _, id := range res.Deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
		}
		return err
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 1, "bundles to keep per kind")
}
