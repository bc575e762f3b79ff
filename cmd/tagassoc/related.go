package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagassoc/pkg/tagassoc"
)

var (
	relatedN      int
	relatedBundle string
)

var relatedCmd = &cobra.Command{
	Use:   "related tag [tag...]",
	Short: "List the tags most associated with all the given tags",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRelated,
}

func init() {
	relatedCmd.Flags().IntVarP(&relatedN, "limit", "n", 10, "number of results, 0 for all")
	relatedCmd.Flags().StringVar(&relatedBundle, "bundle", "", "association bundle ID (default latest)")
}

func runRelated(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := tagassoc.New(tagassoc.Options{})
	if _, err := engine.Load(ctx, st, relatedBundle); err != nil {
		return err
	}
	results, err := engine.Related(args, relatedN)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "no related tags")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-32s %.4f\n", r.Tag, r.Score)
	}
	return nil
}
