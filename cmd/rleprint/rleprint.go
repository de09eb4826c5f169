// Command rleprint prints sprites from a resource file to the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/rle"
)

var (
	index   = flag.Int("index", -1, "offset table index of the sprite to print; all sprites if negative")
	header  = flag.Bool("header", false, "print the offset table instead of sprites")
	strict  = flag.Bool("strict_bounds", false, "reject paints outside the sprite's width and height")

	col      = flag.Bool("col", true, "whether to use colors at all")
	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with the best image protocol the terminal supports")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", false, "whether to shrink sprites to fit the terminal")

	rlePath string
)

func setupFilePathFlags() {
	paths.FilePathVar(flag.CommandLine, &rlePath, "rle", "RLEs/Ico/ico00000.rle", "resource file to print from")
}

func main() {
	setupFilePathFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if rlePath == "" {
		glog.Exitf("no resource file given; pass -rle")
	}
	data, err := os.ReadFile(rlePath)
	if err != nil {
		glog.Exitf("reading resource file: %v", err)
	}
	fileNumber := paths.FileNumber(rlePath)
	opts := &rle.Options{StrictBounds: *strict}

	if *header {
		h, err := rle.ReadHeader(data)
		if err != nil {
			glog.Exitf("%v", err)
		}
		fmt.Printf("unknown: %d\n", h.Unknown)
		for i, off := range h.Offsets {
			fmt.Printf("%4d: %d\n", i, off)
		}
		return
	}

	if *index >= 0 {
		res, err := rle.DecodeOne(fileNumber, data, *index, opts)
		if err != nil {
			glog.Exitf("%v", err)
		}
		printResource(res)
		return
	}

	rf, err := rle.DecodeWithOptions(fileNumber, data, opts)
	if err != nil {
		glog.Exitf("%v", err)
	}
	for i := range rf.Resources {
		printResource(&rf.Resources[i])
	}
}

func printResource(res *rle.Resource) {
	fmt.Printf("file %d, index %d: %dx%d at (%d, %d)\n", res.FileNumber, res.Index, res.Width, res.Height, res.OffsetX, res.OffsetY)
	if res.IsSentinel() || res.Width == 0 || res.Height == 0 {
		return
	}
	if err := out(res.Image()); err != nil {
		glog.Errorf("printing sprite %d: %v", res.Index, err)
	}
}
