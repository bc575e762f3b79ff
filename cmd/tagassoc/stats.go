package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagassoc/pkg/tagassoc/analytics"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
	"github.com/cognicore/tagassoc/pkg/tagassoc/tags"
)

var (
	statsTop      int
	statsMinDF    float64
	statsMaxScore float64
	statsJSON     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Describe stored bundles and the latest association matrix",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.IntVar(&statsTop, "top", 10, "strongest pairs to show")
	f.Float64Var(&statsMinDF, "min-df", 20, "ignore candidates: minimum percent of posts")
	f.Float64Var(&statsMaxScore, "max-score", 0.05, "ignore candidates: strongest association below this")
	f.BoolVar(&statsJSON, "json", false, "print a JSON report")
}

type report struct {
	Bundles          []store.Info         `json:"bundles"`
	Summary          analytics.Summary    `json:"summary"`
	TopPairs         []analytics.PairStat `json:"top_pairs"`
	IgnoreCandidates []analytics.TagStat  `json:"ignore_candidates"`
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListBundles(ctx)
	if err != nil {
		return err
	}
	b, err := st.LatestBundle(ctx, store.KindAssociation)
	if err != nil {
		return err
	}
	dict := tags.FromEntries(b.Tags)

	rep := report{
		Bundles:  infos,
		Summary:  analytics.Summarize(b.Matrix),
		TopPairs: analytics.TopPairs(b.Matrix, dict, statsTop),
		IgnoreCandidates: analytics.IgnoreCandidates(
			analytics.TagStats(b.Matrix, dict, b.PostCount), statsMinDF, statsMaxScore),
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	for _, info := range infos {
		fmt.Fprintf(out, "%s  %-12s %-12s posts=%s tags=%s nnz=%s  %s\n",
			info.ID, info.Kind, info.Formula, humanize.Comma(int64(info.PostCount)),
			humanize.Comma(int64(info.TagCount)), humanize.Comma(int64(info.NNZ)),
			humanize.Time(info.CreatedAt))
	}
	s := rep.Summary
	fmt.Fprintf(out, "\nlatest association %s: %dx%d, %s entries, density %.6f, widest row %d, %s, symmetric=%v\n",
		b.ID, s.Rows, s.Cols, humanize.Comma(int64(s.NNZ)), s.Density, s.MaxRowNNZ,
		humanize.Bytes(uint64(s.Footprint)), s.Symmetric)

	fmt.Fprintln(out, "\nstrongest pairs:")
	for _, p := range rep.TopPairs {
		fmt.Fprintf(out, "  %-24s %-24s %.4f\n", p.A, p.B, p.Value)
	}
	if len(rep.IgnoreCandidates) > 0 {
		fmt.Fprintln(out, "\nignore candidates:")
		for _, c := range rep.IgnoreCandidates {
			fmt.Fprintf(out, "  %-24s %5.1f%% of posts, max score %.4f\n", c.Tag, c.DFPercent, c.MaxScore)
		}
	}
	return nil
}
