// Package paths locates data files and enumerates folders of resource files.
package paths

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DataEnv names the environment variable pointing at the data directory.
const DataEnv = "REDMOON_DATA"

// possibleDirs lists, in order of preference, the directories searched by
// Find.
func possibleDirs() []string {
	var dirs []string
	if d := os.Getenv(DataEnv); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, "data", "datafiles")
	if gp := os.Getenv("GOPATH"); gp != "" {
		dirs = append(dirs, filepath.Join(gp, "src", "badc0de.net", "pkg", "go-redmoon", "datafiles"))
	}
	if sd := os.Getenv("TEST_SRCDIR"); sd != "" {
		dirs = append(dirs, filepath.Join(sd, "go_redmoon", "datafiles"))
	}
	dirs = append(dirs, os.Args[0]+".runfiles/go_redmoon/datafiles")
	return dirs
}

// Find locates the passed data file (or directory) shortname and returns a
// path to it, or an empty string.
//
// For example, for "RLEs/Ico" it may return "data/RLEs/Ico".
func Find(fileName string) string {
	for _, dir := range possibleDirs() {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			glog.V(1).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}

// Open locates the passed file in the same locations that Find would look,
// and opens it.
func Open(fileName string) (*os.File, error) {
	path := Find(fileName)
	if path == "" {
		return nil, errors.Wrapf(os.ErrNotExist, "paths.Open(%q): not found in any data directory", fileName)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.Open(%q)", fileName)
	}
	return f, nil
}
