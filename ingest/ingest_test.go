package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"badc0de.net/pkg/go-redmoon/lst"
	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/rle"
)

type fakeSink struct {
	lists     map[string][]lst.Item
	resources map[string][]rle.Resource
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		lists:     map[string][]lst.Item{},
		resources: map[string][]rle.Resource{},
	}
}

func (s *fakeSink) InsertList(ctx context.Context, typ string, items []lst.Item) error {
	s.lists[typ] = append(s.lists[typ], items...)
	return nil
}

func (s *fakeSink) InsertResources(ctx context.Context, typ string, resources []rle.Resource) error {
	s.resources[typ] = append(s.resources[typ], resources...)
	return nil
}

func writeContainer(t *testing.T, path string, rf *rle.ResourceFile) {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, rle.Encode(buf, rf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func sprite(index uint32, lo, hi byte) rle.Resource {
	return rle.Resource{Index: index, Width: 1, Height: 1, Pixels: []byte{lo, hi}}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	ico := filepath.Join(dir, "Ico")
	require.NoError(t, os.Mkdir(ico, 0o755))
	writeContainer(t, filepath.Join(ico, "ico00001.rle"), &rle.ResourceFile{Resources: []rle.Resource{sprite(3, 1, 1)}})
	writeContainer(t, filepath.Join(ico, "ico00000.rle"), &rle.ResourceFile{Resources: []rle.Resource{sprite(2, 2, 2), sprite(0, 3, 3)}})

	list := filepath.Join(dir, "ico.lst.xml")
	require.NoError(t, os.WriteFile(list, []byte(`<list type="Icons"><item id="5" name="Sword" file="1" index="3"/></list>`), 0o644))

	sink := newFakeSink()
	sums, err := Run(context.Background(), sink, []Folder{{Type: "Icons", Dir: ico, List: list}}, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.Equal(t, 1, sums[0].ListItems)
	require.Equal(t, 2, sums[0].Containers)
	require.Equal(t, 3, sums[0].Resources)

	require.Equal(t, []lst.Item{{ID: 5, Name: "Sword", FileNumber: 1, Index: 3}}, sink.lists["Icons"])

	got := sink.resources["Icons"]
	require.Len(t, got, 3)
	type key struct{ file, index uint32 }
	var keys []key
	for _, r := range got {
		keys = append(keys, key{r.FileNumber, r.Index})
	}
	require.Equal(t, []key{{0, 0}, {0, 2}, {1, 3}}, keys)
	require.Equal(t, []byte{3, 3}, got[0].Pixels)
}

func TestRunWithoutList(t *testing.T) {
	dir := t.TempDir()
	writeContainer(t, filepath.Join(dir, "tle7.rle"), &rle.ResourceFile{Resources: []rle.Resource{sprite(0, 9, 9)}})

	sink := newFakeSink()
	_, err := Run(context.Background(), sink, []Folder{{Type: "Tiles", Dir: dir}}, Options{})
	require.NoError(t, err)
	require.Empty(t, sink.lists)
	require.Len(t, sink.resources["Tiles"], 1)
	require.Equal(t, uint32(7), sink.resources["Tiles"][0].FileNumber)
}

func TestRunStopsOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeContainer(t, filepath.Join(dir, "obj1.rle"), &rle.ResourceFile{Resources: []rle.Resource{sprite(0, 1, 1)}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "obj2.rle"), []byte("not a resource file"), 0o644))

	sink := newFakeSink()
	_, err := Run(context.Background(), sink, []Folder{{Type: "Objects", Dir: dir}}, Options{Workers: 1})
	require.ErrorIs(t, err, rle.ErrMissingIdentifier)
	require.Contains(t, err.Error(), "obj2.rle")
	require.Empty(t, sink.resources)
}

func TestRunMissingList(t *testing.T) {
	_, err := Run(context.Background(), newFakeSink(), []Folder{{Type: "Bullets", Dir: t.TempDir(), List: "/nonexistent/bul.lst.xml"}}, Options{})
	require.Error(t, err)
}

func TestDecodeFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c1.rle")
	writeContainer(t, path, &rle.ResourceFile{Resources: []rle.Resource{sprite(0, 1, 1)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeFiles(ctx, []string{path}, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadListFromDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "RLEs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "RLEs", "ico.lst.xml"),
		[]byte(`<list type="Icons"><item id="5" name="Sword" file="1" index="3"/></list>`), 0o644))
	t.Setenv(paths.DataEnv, dir)

	l, err := ReadList("RLEs/ico.lst.xml")
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	require.Equal(t, "Sword", l.Items[0].Name)

	_, err = ReadList("RLEs/missing.lst.xml")
	require.ErrorIs(t, err, os.ErrNotExist)
}
