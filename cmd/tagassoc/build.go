package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cognicore/tagassoc/pkg/tagassoc"
	"github.com/cognicore/tagassoc/pkg/tagassoc/config"
	"github.com/cognicore/tagassoc/pkg/tagassoc/ingest"
	"github.com/cognicore/tagassoc/pkg/tagassoc/maintenance"
)

var (
	buildConfig  string
	buildInput   string
	buildFormat  string
	buildWorkers int
	buildFormula string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build co-occurrence and association matrices from a post file",
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildConfig, "config", "", "YAML config file")
	f.StringVar(&buildInput, "input", "", "post file (overrides input.path)")
	f.StringVar(&buildFormat, "format", "", "csv or jsonl (overrides input.format)")
	f.IntVar(&buildWorkers, "workers", 0, "counting workers (overrides workers)")
	f.StringVar(&buildFormula, "formula", "", "standard, row-marginal or ratio (overrides formula)")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if buildConfig != "" {
		var err error
		if cfg, err = config.Load(buildConfig); err != nil {
			return cfg, err
		}
	}
	if buildInput != "" {
		cfg.Input.Path = buildInput
	}
	if buildFormat != "" {
		cfg.Input.Format = buildFormat
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = buildWorkers
	}
	if buildFormula != "" {
		cfg.Formula = buildFormula
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Input.Path == "" {
		return cfg, fmt.Errorf("--input required")
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	comp, err := cfg.Components()
	if err != nil {
		return err
	}

	start := time.Now()
	corpus, err := ingest.LoadFile(cfg.Input.Path, ingest.Format(cfg.Input.Format), cfg.Input.TagColumn, comp.Tokenizer)
	if err != nil {
		return err
	}
	log.Printf("Read %s posts, %s tags (%d skipped) in %v",
		humanize.Comma(int64(corpus.PostCount())), humanize.Comma(int64(corpus.Dict.Len())),
		corpus.Skipped, time.Since(start).Round(time.Millisecond))

	engine := tagassoc.New(tagassoc.Options{
		Workers:    cfg.Workers,
		Calculator: comp.Calculator,
		CacheSize:  cfg.CacheSize,
		Progress: func(merged, total int) {
			log.Printf("Summing slice %d of %d", merged, total)
		},
	})
	start = time.Now()
	res, err := engine.Build(ctx, corpus)
	if err != nil {
		return err
	}
	log.Printf("Co-occurrence: %s entries, %s", humanize.Comma(int64(res.Cooccurrence.NNZ())),
		humanize.Bytes(uint64(res.Cooccurrence.Footprint())))
	log.Printf("Association (%s): %s entries, %s in %v", comp.Calculator.Formula(),
		humanize.Comma(int64(res.Association.NNZ())), humanize.Bytes(uint64(res.Association.Footprint())),
		time.Since(start).Round(time.Millisecond))

	st, err := openStore(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := engine.Save(ctx, st)
	if err != nil {
		return err
	}
	log.Printf("Saved bundle %s to %s", id, cfg.Store.Path)

	if cfg.Store.Keep > 0 {
		res, err := (&maintenance.Pruner{Store: st, Keep: cfg.Store.Keep}).Prune(ctx)
		if err != nil {
			return err
		}
		log.Printf("Pruned %d of %d bundles", len(res.Deleted), res.Examined)
	}
	return nil
}
