// Package ingest runs the batch conversion of folders of resource files and
// their name lists into a Sink, such as the SQLite store.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-redmoon/lst"
	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/rle"
)

// Folder is one kind of sprite: a directory of resource files plus the list
// naming them.
type Folder struct {
	Type string `json:"type"`
	Dir  string `json:"dir"`
	List string `json:"list"` // Optional.
}

// Sink receives the converted data. Each call should be a single transaction.
type Sink interface {
	InsertList(ctx context.Context, typ string, items []lst.Item) error
	InsertResources(ctx context.Context, typ string, resources []rle.Resource) error
}

// Options tunes a run.
type Options struct {
	Workers int          // Concurrent decodes; NumCPU when zero.
	Decode  *rle.Options // Passed to every decode.
}

// FolderSummary counts what a run produced for one folder.
type FolderSummary struct {
	Type       string
	ListItems  int
	Containers int
	Resources  int
	Elapsed    time.Duration
}

// Run converts every folder in turn. The first error stops the run; folders
// already written stay in the sink.
func Run(ctx context.Context, sink Sink, folders []Folder, opts Options) ([]FolderSummary, error) {
	var sums []FolderSummary
	for _, f := range folders {
		sum, err := runFolder(ctx, sink, f, opts)
		if err != nil {
			return sums, errors.Wrapf(err, "ingest: folder %s", f.Type)
		}
		glog.Infof("ingest: %s: %d list items, %d resources from %d files in %v",
			sum.Type, sum.ListItems, sum.Resources, sum.Containers, sum.Elapsed)
		sums = append(sums, sum)
	}
	return sums, nil
}

func runFolder(ctx context.Context, sink Sink, f Folder, opts Options) (FolderSummary, error) {
	start := time.Now()
	sum := FolderSummary{Type: f.Type}

	if f.List != "" {
		l, err := ReadList(f.List)
		if err != nil {
			return sum, err
		}
		if err := sink.InsertList(ctx, f.Type, l.Items); err != nil {
			return sum, errors.Wrap(err, "storing list")
		}
		sum.ListItems = len(l.Items)
	}

	files, err := paths.ListContainers(f.Dir)
	if err != nil {
		return sum, err
	}
	resources, err := DecodeFiles(ctx, files, opts)
	if err != nil {
		return sum, err
	}
	if err := sink.InsertResources(ctx, f.Type, resources); err != nil {
		return sum, errors.Wrap(err, "storing resources")
	}

	sum.Containers = len(files)
	sum.Resources = len(resources)
	sum.Elapsed = time.Since(start)
	return sum, nil
}

// ReadList opens and parses a list export. A relative path that does not
// exist from the working directory is looked up in the data directories.
func ReadList(path string) (*lst.List, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !filepath.IsAbs(path) {
		f, err = paths.Open(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening list")
	}
	defer f.Close()
	l, err := lst.Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading list %s", path)
	}
	return l, nil
}

// DecodeFile decodes one resource file, numbering it after its name.
func DecodeFile(path string, opts *rle.Options) (*rle.ResourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading resource file")
	}
	rf, err := rle.DecodeWithOptions(paths.FileNumber(path), data, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return rf, nil
}

// DecodeFiles decodes files concurrently and returns all their resources
// ordered by file number and index.
func DecodeFiles(ctx context.Context, files []string, opts Options) ([]rle.Resource, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	decoded := make([][]rle.Resource, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rf, err := DecodeFile(path, opts.Decode)
			if err != nil {
				return err
			}
			glog.V(2).Infof("ingest: %s: %d resources", path, len(rf.Resources))
			decoded[i] = rf.Resources
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []rle.Resource
	for _, rs := range decoded {
		all = append(all, rs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].FileNumber != all[j].FileNumber {
			return all[i].FileNumber < all[j].FileNumber
		}
		return all[i].Index < all[j].Index
	})
	return all, nil
}
