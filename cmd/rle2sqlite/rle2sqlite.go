// Command rle2sqlite decodes the sprite folders of a game install, together
// with their name lists, into a SQLite database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-redmoon/config"
	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/ingest"
	"badc0de.net/pkg/go-redmoon/rle"
	"badc0de.net/pkg/go-redmoon/store"
)

var (
	dataDir  = flag.String("data_dir", "", "game data directory, containing RLEs/")
	dbPath   = flag.String("db", "", "SQLite database to write")
	workers  = flag.Int("workers", 0, "concurrent decodes")
	compress = flag.Bool("compress_images", false, "store images zstd-compressed")
	strict   = flag.Bool("strict_bounds", false, "reject paints outside the sprite's width and height")
	keep     = flag.Bool("keep", false, "keep existing rows instead of recreating the tables")

	configPath string // JSON config file
)

func main() {
	paths.SetupFilePathFlag("redmoon.json", "config", &configPath)
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	var cfg config.Config
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			glog.Exitf("%v", err)
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:        *dataDir,
		DBPath:         *dbPath,
		Workers:        *workers,
		CompressImages: *compress,
		StrictBounds:   *strict,
	})
	glog.Infof("data directory %q, database %q", cfg.DataDir, cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(cfg.DBPath, store.Options{CompressImages: cfg.CompressImages})
	if err != nil {
		glog.Exitf("%v", err)
	}
	defer st.Close()

	if !*keep {
		if err := st.Reset(ctx); err != nil {
			glog.Exitf("%v", err)
		}
	}

	sums, err := ingest.Run(ctx, st, cfg.Folders, ingest.Options{
		Workers: cfg.Workers,
		Decode:  &rle.Options{StrictBounds: cfg.StrictBounds},
	})
	if err != nil {
		glog.Errorf("%v", err)
		st.Close()
		os.Exit(1)
	}

	lists, resources, err := st.Counts(ctx)
	if err != nil {
		glog.Exitf("%v", err)
	}
	glog.Infof("done: %d folders, %d list rows, %d resource rows", len(sums), lists, resources)
}
