// Package config holds the settings shared by the batch tools.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-redmoon/ingest"
	"badc0de.net/pkg/go-redmoon/paths"
)

// Config holds all configurable paths and settings.
type Config struct {
	// Paths
	DataDir string          `json:"data_dir"`
	DBPath  string          `json:"db_path"`
	Folders []ingest.Folder `json:"folders"`

	// Decode and output settings
	Workers        int    `json:"workers"`
	CompressImages bool   `json:"compress_images"`
	StrictBounds   bool   `json:"strict_bounds"`
	ListenAddress  string `json:"listen_address"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir        string
	DBPath         string
	Workers        int
	CompressImages bool
	StrictBounds   bool
	ListenAddress  string
}

// DefaultFolders are the sprite folders of a game install, relative to the
// data directory. Sounds live in a folder of their own format and are not
// listed.
func DefaultFolders() []ingest.Folder {
	return []ingest.Folder{
		{Type: "Bullets", Dir: "RLEs/Bul", List: "RLEs/bul.lst.xml"},
		{Type: "Icons", Dir: "RLEs/Ico", List: "RLEs/ico.lst.xml"},
		{Type: "Objects", Dir: "RLEs/Obj", List: "RLEs/obj.lst.xml"},
		{Type: "Tiles", Dir: "RLEs/Tle", List: "RLEs/tle.lst.xml"},
		{Type: "Interface", Dir: "RLEs/Int", List: "RLEs/int.lst.xml"},
	}
}

// Load reads a JSON config file. Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Resolve fills in empty fields with defaults. CLI flags take priority when
// non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.DBPath != "" {
		c.DBPath = flags.DBPath
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.CompressImages {
		c.CompressImages = true
	}
	if flags.StrictBounds {
		c.StrictBounds = true
	}
	if flags.ListenAddress != "" {
		c.ListenAddress = flags.ListenAddress
	}

	if c.DataDir == "" {
		if rles := paths.Find("RLEs"); rles != "" {
			c.DataDir = filepath.Dir(rles)
		}
	}
	if len(c.Folders) == 0 {
		c.Folders = DefaultFolders()
	}
	for i := range c.Folders {
		c.Folders[i].Dir = c.resolve(c.Folders[i].Dir)
		c.Folders[i].List = c.resolve(c.Folders[i].List)
	}

	if c.DBPath == "" {
		c.DBPath = "rm.sqlite"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ListenAddress == "" {
		c.ListenAddress = ":8080"
	}
}

// resolve makes a relative path relative to the data directory.
func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.DataDir == "" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
