// Command rleweb serves the sprites of a game install over HTTP.
package main

import (
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-redmoon/config"
	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/rle"
	"badc0de.net/pkg/go-redmoon/web"
)

var (
	dataDir       = flag.String("data_dir", "", "game data directory, containing RLEs/")
	listenAddress = flag.String("listen_address", "", "http listen address for rleweb")
	strict        = flag.Bool("strict_bounds", false, "reject paints outside the sprite's width and height")

	configPath string // JSON config file
)

func main() {
	paths.SetupFilePathFlag("redmoon.json", "config", &configPath)
	flagutil.Parse()

	var cfg config.Config
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			glog.Exitf("%v", err)
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:       *dataDir,
		ListenAddress: *listenAddress,
		StrictBounds:  *strict,
	})

	figure.NewFigure("rleweb", "", true).Print()

	r := mux.NewRouter()
	web.NewHandler(cfg.Folders, &rle.Options{StrictBounds: cfg.StrictBounds}).RegisterRoutes(r)
	r.HandleFunc("/debug/requests", trace.Traces)
	r.HandleFunc("/debug/events", trace.Events)

	glog.Infof("serving %q on %s", cfg.DataDir, cfg.ListenAddress)
	glog.Fatal(http.ListenAndServe(cfg.ListenAddress, handlers.CombinedLoggingHandler(os.Stderr, r)))
}
