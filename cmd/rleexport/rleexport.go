// Command rleexport writes every sprite of the passed resource files to image
// files.
//
//	rleexport -out sprites -format webp -scale 2 RLEs/Ico/*.rle
package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-redmoon/export"
	"badc0de.net/pkg/go-redmoon/ingest"
	"badc0de.net/pkg/go-redmoon/rle"
)

var (
	outDir  = flag.String("out", "export", "directory to write images to")
	format  = flag.String("format", "png", "image format: png, gif, webp, tga or bmp")
	scale   = flag.Int("scale", 1, "integer upscaling factor")
	strict  = flag.Bool("strict_bounds", false, "reject paints outside the sprite's width and height")
	workers = flag.Int("workers", runtime.NumCPU(), "files exported concurrently")
)

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	f, err := export.ParseFormat(*format)
	if err != nil {
		glog.Exitf("%v", err)
	}
	if flag.NArg() == 0 {
		glog.Exitf("no resource files given")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		glog.Exitf("creating output directory: %v", err)
	}

	opts := export.Options{Format: f, Scale: *scale}
	decodeOpts := &rle.Options{StrictBounds: *strict}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for _, path := range flag.Args() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rf, err := ingest.DecodeFile(path, decodeOpts)
			if err != nil {
				return err
			}
			written, err := export.WriteResourceFile(*outDir, rf, opts)
			if err != nil {
				return err
			}
			glog.Infof("%s: wrote %d images", path, len(written))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		glog.Exitf("%v", err)
	}
}
