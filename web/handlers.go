// Package web serves decoded resource files over HTTP.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/andybons/gogif"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"
	"golang.org/x/sync/singleflight"

	"badc0de.net/pkg/go-redmoon/datafiles"
	"badc0de.net/pkg/go-redmoon/ingest"
	"badc0de.net/pkg/go-redmoon/lst"
	"badc0de.net/pkg/go-redmoon/paths"
	"badc0de.net/pkg/go-redmoon/rle"
)

var indexTemplate = template.Must(template.ParseFS(datafiles.Templates, "index.html"))

// bump if the way images are generated changes
const generation = 1

var errNotFound = errors.New("web: not found")

type cacheKey struct {
	typ  string
	file uint32
}

type container struct {
	modTime time.Time
	rf      *rle.ResourceFile
}

type Handler struct {
	folders []ingest.Folder
	opts    *rle.Options
	decode  func(path string, opts *rle.Options) (*rle.ResourceFile, error)
	decodes singleflight.Group

	mu    sync.Mutex // guards cache and names
	cache map[cacheKey]*container
	names map[string]map[lst.Key]lst.Item
}

// NewHandler constructs a web handler serving the passed folders. opts is
// used for every decode; it may be nil.
func NewHandler(folders []ingest.Folder, opts *rle.Options) *Handler {
	return &Handler{
		folders: folders,
		opts:    opts,
		decode:  ingest.DecodeFile,
		cache:   make(map[cacheKey]*container),
		names:   make(map[string]map[lst.Key]lst.Item),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/rle/{type}/{file:[0-9]+}", h.containerHandler)
	r.HandleFunc("/rle/{type}/{file:[0-9]+}/{idx:[0-9]+}.{ext:png|gif}", h.imageHandler)
}

func (h *Handler) folder(typ string) (ingest.Folder, bool) {
	for _, f := range h.folders {
		if f.Type == typ {
			return f, true
		}
	}
	return ingest.Folder{}, false
}

// containerPath finds the file of the given number in the folder of type typ.
func (h *Handler) containerPath(typ string, file uint32) (string, error) {
	f, ok := h.folder(typ)
	if !ok {
		return "", errors.Wrapf(errNotFound, "no folder %q", typ)
	}
	files, err := paths.ListContainers(f.Dir)
	if err != nil {
		return "", err
	}
	for _, p := range files {
		if paths.FileNumber(p) == file {
			return p, nil
		}
	}
	return "", errors.Wrapf(errNotFound, "no file %d in %q", file, typ)
}

// load returns the decoded container, decoding it again if the file changed
// since it was cached. The mutex only guards the cache; concurrent requests
// for the same file share one decode.
func (h *Handler) load(typ string, file uint32, path string, modTime time.Time) (*rle.ResourceFile, error) {
	key := cacheKey{typ, file}
	h.mu.Lock()
	c, ok := h.cache[key]
	h.mu.Unlock()
	if ok && c.modTime.Equal(modTime) {
		return c.rf, nil
	}

	v, err, _ := h.decodes.Do(fmt.Sprintf("%s/%d/%d", typ, file, modTime.UnixNano()), func() (interface{}, error) {
		tr := trace.New("rle.Decode", path)
		defer tr.Finish()
		rf, err := h.decode(path, h.opts)
		if err != nil {
			tr.LazyPrintf("%v", err)
			tr.SetError()
			return nil, err
		}
		tr.LazyPrintf("%d resources", len(rf.Resources))

		h.mu.Lock()
		h.cache[key] = &container{modTime: modTime, rf: rf}
		h.mu.Unlock()
		return rf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rle.ResourceFile), nil
}

// listItems returns the list entries of the folder, or nil if it has no list.
func (h *Handler) listItems(typ string) map[lst.Key]lst.Item {
	h.mu.Lock()
	items, ok := h.names[typ]
	h.mu.Unlock()
	if ok {
		return items
	}

	f, _ := h.folder(typ)
	if f.List != "" {
		l, err := ingest.ReadList(f.List)
		if err != nil {
			glog.Warningf("web: %s: %v", typ, err)
		} else {
			items = l.ByKey()
		}
	}
	h.mu.Lock()
	h.names[typ] = items
	h.mu.Unlock()
	return items
}

// stat resolves the request's container and reports an error response if it
// cannot.
func (h *Handler) stat(w http.ResponseWriter, vars map[string]string) (string, uint32, os.FileInfo, bool) {
	file, err := strconv.ParseUint(vars["file"], 10, 32)
	if err != nil {
		http.Error(w, "file not a number", http.StatusBadRequest)
		return "", 0, nil, false
	}
	path, err := h.containerPath(vars["type"], uint32(file))
	if err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, "failed to list data files", http.StatusInternalServerError)
			glog.Errorf("web: %v", err)
		}
		return "", 0, nil, false
	}
	s, err := os.Stat(path)
	if err != nil {
		http.Error(w, "failed to open data file", http.StatusNotFound)
		return "", 0, nil, false
	}
	return path, uint32(file), s, true
}

type indexContainer struct {
	Type       string
	FileNumber uint32
	Name       string
}

type indexFolder struct {
	Type       string
	Containers []indexContainer
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title   string
		Folders []indexFolder
	}{Title: "Redmoon resources"}

	for _, f := range h.folders {
		files, err := paths.ListContainers(f.Dir)
		if err != nil {
			glog.Warningf("web: %v", err)
			continue
		}
		names := make(map[uint32]string)
		for k, it := range h.listItems(f.Type) {
			if prev, ok := names[k.FileNumber]; !ok || it.Name < prev {
				names[k.FileNumber] = it.Name
			}
		}
		folder := indexFolder{Type: f.Type}
		for _, p := range files {
			n := paths.FileNumber(p)
			folder.Containers = append(folder.Containers, indexContainer{Type: f.Type, FileNumber: n, Name: names[n]})
		}
		data.Folders = append(data.Folders, folder)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		glog.Errorf("web: rendering index: %v", err)
	}
}

type resourceJSON struct {
	Index     uint32    `json:"index"`
	ID        uint32    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Offset    uint32    `json:"offset"`
	Length    uint32    `json:"length"`
	OffsetX   uint32    `json:"offset_x"`
	OffsetY   uint32    `json:"offset_y"`
	Width     uint32    `json:"width"`
	Height    uint32    `json:"height"`
	Unknown   [4]uint32 `json:"unknown"`
	Sentinel  bool      `json:"sentinel,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

type containerJSON struct {
	Type       string         `json:"type"`
	FileNumber uint32         `json:"file"`
	Unknown    uint32         `json:"unknown"`
	Resources  []resourceJSON `json:"resources"`
}

func (h *Handler) containerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, file, s, ok := h.stat(w, vars)
	if !ok {
		return
	}
	typ := vars["type"]

	mime := "application/json"
	etag := fmt.Sprintf(`W/"rle:%d:%s:%d:%d:%s"`, generation, typ, file, s.ModTime().UnixNano(), mime)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public; max-age=3600")
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rf, err := h.load(typ, file, path, s.ModTime())
	if err != nil {
		http.Error(w, "failed to decode rle", http.StatusInternalServerError)
		glog.Errorf("error decoding rle: %v", err)
		return
	}

	items := h.listItems(typ)
	out := containerJSON{Type: typ, FileNumber: file, Unknown: rf.Unknown, Resources: []resourceJSON{}}
	for i := range rf.Resources {
		res := &rf.Resources[i]
		rj := resourceJSON{
			Index:    res.Index,
			Offset:   res.Offset,
			Length:   res.Length,
			OffsetX:  res.OffsetX,
			OffsetY:  res.OffsetY,
			Width:    res.Width,
			Height:   res.Height,
			Unknown:  res.Unknown,
			Sentinel: res.IsSentinel(),
		}
		if it, ok := items[lst.Key{FileNumber: file, Index: res.Index}]; ok {
			rj.ID = it.ID
			rj.Name = it.Name
		}
		if !rj.Sentinel && res.Width > 0 && res.Height > 0 {
			buf := &bytes.Buffer{}
			if err := png.Encode(buf, res.Image()); err == nil {
				rj.Thumbnail = dataurl.New(buf.Bytes(), "image/png").String()
			}
		}
		out.Resources = append(out.Resources, rj)
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", s.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) imageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path, file, s, ok := h.stat(w, vars)
	if !ok {
		return
	}
	typ := vars["type"]
	idx, err := strconv.ParseUint(vars["idx"], 10, 32)
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return
	}

	mime := "image/" + vars["ext"]
	etag := fmt.Sprintf(`W/"rle:%d:%s:%d:%d:%d:%s"`, generation, typ, file, idx, s.ModTime().UnixNano(), mime)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rf, err := h.load(typ, file, path, s.ModTime())
	if err != nil {
		http.Error(w, "failed to decode rle", http.StatusInternalServerError)
		glog.Errorf("error decoding rle: %v", err)
		return
	}
	var res *rle.Resource
	for i := range rf.Resources {
		if rf.Resources[i].Index == uint32(idx) {
			res = &rf.Resources[i]
			break
		}
	}
	if res == nil {
		http.Error(w, "no such resource", http.StatusNotFound)
		return
	}
	if res.IsSentinel() || res.Width == 0 || res.Height == 0 {
		http.Error(w, "resource has no image", http.StatusNotFound)
		return
	}

	buf := &bytes.Buffer{}
	img := res.Image()
	if vars["ext"] == "gif" {
		err = gif.Encode(buf, transparentPaletted(img), nil)
	} else {
		err = png.Encode(buf, img)
	}
	if err != nil {
		http.Error(w, "image could not be generated", http.StatusInternalServerError)
		glog.Errorf("error encoding %s: %v", mime, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", s.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// transparentPaletted quantizes img to at most 255 colors and prepends
// color.Transparent to the palette, so blank pixels stay transparent.
func transparentPaletted(img image.Image) *image.Paletted {
	pal := image.NewPaletted(img.Bounds(), nil)
	quantizer := gogif.MedianCutQuantizer{NumColor: 255}
	quantizer.Quantize(pal, img.Bounds(), img, image.Point{})

	// gogif's quantizer only hands out the palette together with a copy of
	// the image, so the image is drawn a second time onto the extended
	// palette. Index 0 is transparent, which is what an untouched pixel is.
	palTransparent := image.NewPaletted(img.Bounds(), append(color.Palette{color.Transparent}, pal.Palette...))
	draw.Draw(palTransparent, img.Bounds(), img, img.Bounds().Min, draw.Over)
	return palTransparent
}
