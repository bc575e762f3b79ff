package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagassoc/pkg/tagassoc/store"
	"github.com/cognicore/tagassoc/pkg/tagassoc/store/sqlite"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "tagassoc",
	Short: "Tag association matrices from tagged posts",
	Long: `tagassoc counts how often tags appear together on posts, turns the
counts into normalized PMI scores and answers "which tags go with these?"

Examples:
  tagassoc build --input posts.csv --db tags.db
  tagassoc related --db tags.db cat dog -n 20
  tagassoc stats --db tags.db`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite bundle database (default from config or tagassoc.db)")
	rootCmd.AddCommand(buildCmd, relatedCmd, statsCmd, pruneCmd)
}

func main() {
	log.SetFlags(log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func openStore(ctx context.Context, path string) (store.Store, error) {
	if path == "" {
		path = "tagassoc.db"
	}
	return sqlite.OpenSQLite(ctx, path)
}
