package web

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badc0de.net/pkg/go-redmoon/ingest"
	"badc0de.net/pkg/go-redmoon/rle"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	ico := filepath.Join(dir, "Ico")
	require.NoError(t, os.Mkdir(ico, 0o755))

	rf := &rle.ResourceFile{Resources: []rle.Resource{
		// Red, then a blank pixel.
		{Index: 1, Width: 2, Height: 1, Pixels: []byte{0x00, 0xF8, 0x00, 0x00}},
		{Index: 2, Width: 8000, Height: 1, Pixels: []byte{0, 0}},
	}}
	buf := &bytes.Buffer{}
	require.NoError(t, rle.Encode(buf, rf))
	require.NoError(t, os.WriteFile(filepath.Join(ico, "ico00007.rle"), buf.Bytes(), 0o644))

	list := filepath.Join(dir, "ico.lst.xml")
	require.NoError(t, os.WriteFile(list, []byte(`<list type="Icons"><item id="9" name="Ruby" file="7" index="1"/></list>`), 0o644))

	r := mux.NewRouter()
	NewHandler([]ingest.Folder{{Type: "Icons", Dir: ico, List: list}}, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, hdr map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := &bytes.Buffer{}
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Contains(t, body.String(), `href="/rle/Icons/7"`)
	require.Contains(t, body.String(), "Ruby")
}

func TestContainerJSON(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/rle/Icons/7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get("Last-Modified"))

	var got containerJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, uint32(7), got.FileNumber)
	require.Len(t, got.Resources, 2)

	require.Equal(t, "Ruby", got.Resources[0].Name)
	require.Equal(t, uint32(9), got.Resources[0].ID)
	require.True(t, strings.HasPrefix(got.Resources[0].Thumbnail, "data:image/png;base64,"))

	require.True(t, got.Resources[1].Sentinel)
	require.Empty(t, got.Resources[1].Thumbnail)
}

func TestImagePNG(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/rle/Icons/7/1.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{R: 255, A: 255}, color.NRGBAModel.Convert(img.At(0, 0)))
	_, _, _, a := img.At(1, 0).RGBA()
	require.Zero(t, a)
}

func TestImageGIF(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/rle/Icons/7/1.gif", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	img, err := gif.Decode(resp.Body)
	require.NoError(t, err)
	_, _, _, a := img.At(1, 0).RGBA()
	require.Zero(t, a)
	r, _, _, a := img.At(0, 0).RGBA()
	require.NotZero(t, a)
	require.Greater(t, r, uint32(0x8000))
}

func TestETag(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv.URL+"/rle/Icons/7/1.png", nil)
	etag := resp.Header.Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`))

	resp = get(t, srv.URL+"/rle/Icons/7/1.png", map[string]string{"If-None-Match": etag})
	require.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{
		"/rle/Tiles/7",
		"/rle/Icons/8",
		"/rle/Icons/7/3.png",
		"/rle/Icons/7/2.png", // sentinel
	} {
		resp := get(t, srv.URL+path, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestLoadDoesNotBlockOnSlowDecode(t *testing.T) {
	dir := t.TempDir()
	one := &rle.ResourceFile{Resources: []rle.Resource{{Index: 0, Width: 1, Height: 1, Pixels: []byte{1, 1}}}}
	buf := &bytes.Buffer{}
	require.NoError(t, rle.Encode(buf, one))
	for _, name := range []string{"obj1.rle", "obj2.rle"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
	}
	stat := func(name string) (string, time.Time) {
		path := filepath.Join(dir, name)
		s, err := os.Stat(path)
		require.NoError(t, err)
		return path, s.ModTime()
	}

	h := NewHandler([]ingest.Folder{{Type: "Objects", Dir: dir}}, nil)
	path1, mod1 := stat("obj1.rle")
	_, err := h.load("Objects", 1, path1, mod1)
	require.NoError(t, err)

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var decodes int32
	h.decode = func(path string, opts *rle.Options) (*rle.ResourceFile, error) {
		atomic.AddInt32(&decodes, 1)
		started <- struct{}{}
		<-release
		return ingest.DecodeFile(path, opts)
	}

	path2, mod2 := stat("obj2.rle")
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rf, err := h.load("Objects", 2, path2, mod2)
			if assert.NoError(t, err) {
				assert.Len(t, rf.Resources, 1)
			}
		}()
	}
	<-started

	cached := make(chan error, 1)
	go func() {
		_, err := h.load("Objects", 1, path1, mod1)
		cached <- err
	}()
	select {
	case err := <-cached:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cached container waited for another container's decode")
	}

	close(release)
	wg.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&decodes), int32(2))

	// Now cached: no further decodes.
	before := atomic.LoadInt32(&decodes)
	_, err = h.load("Objects", 2, path2, mod2)
	require.NoError(t, err)
	require.Equal(t, before, atomic.LoadInt32(&decodes))
}
