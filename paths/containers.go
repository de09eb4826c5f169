package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// UnknownFileNumber is assigned to files whose names carry no usable number.
const UnknownFileNumber = 0xFFFF

// FileNumber derives a container's file number from its name: all decimal
// digits of the file stem, concatenated. "c0000042.rle" is file 42. Names
// without digits, or with too many, get UnknownFileNumber.
func FileNumber(path string) uint32 {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var digits strings.Builder
	for _, r := range stem {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseUint(digits.String(), 10, 32)
	if err != nil {
		return UnknownFileNumber
	}
	return uint32(n)
}

// ListContainers returns the regular files in dir, sorted by name.
func ListContainers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing resource files in %q", dir)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
