package hdrstack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// rawExts are the raw container extensions picked up by directory scans.
var rawExts = map[string]bool{
	".dng": true,
	".cr2": true,
	".nef": true,
	".arw": true,
	".orf": true,
	".raf": true,
	".rw2": true,
	".pef": true,
}

// Add discovers the files of an exposure series from a filename pattern
// with at most one integer placeholder (e.g. "img_%d.dng"), probing
// consecutive indices starting at zero. Some cameras number brackets
// from one, so if the zero-based probe finds nothing the probe restarts
// at one. A stray file matching index zero therefore wins over a
// one-based sequence. A pattern without a placeholder names a single,
// non-bracketed file.
func (s *Series) Add(pattern string) {
	found := false

	for exposure := 0; ; exposure++ {
		filename := expand(pattern, exposure)
		if _, err := os.Stat(filename); err != nil {
			break
		}
		if exposure == 1 && !strings.Contains(pattern, "%") {
			break // just one image
		}
		found = true
		s.Exposures = append(s.Exposures, &Exposure{Filename: filename})
	}

	if !found {
		// Maybe the sequence starts at 1?
		for exposure := 1; ; exposure++ {
			filename := expand(pattern, exposure)
			if _, err := os.Stat(filename); err != nil {
				break
			}
			s.Exposures = append(s.Exposures, &Exposure{Filename: filename})
		}
	}

	klog.V(1).Infof("pattern %q matched %d files", pattern, len(s.Exposures))
}

// AddFiles appends an explicit list of files to the series.
func (s *Series) AddFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%q: %v: %w", p, err, ErrFileAccess)
		}
		s.Exposures = append(s.Exposures, &Exposure{Filename: p})
	}
	return nil
}

// ScanDir discovers a series from every raw file below root.
func (s *Series) ScanDir(root string) error {
	files, err := FindRawFiles(root)
	if err != nil {
		return err
	}
	return s.AddFiles(files...)
}

// FindRawFiles walks root and returns every raw camera file below it,
// in lexical order. Dot-directories and dotfiles are skipped.
func FindRawFiles(root string) ([]string, error) {
	found := []string{}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if base := filepath.Base(path); base[0] == '.' && path != root {
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				return nil
			}

			if rawExts[strings.ToLower(filepath.Ext(path))] {
				klog.V(1).Infof("found %s", path)
				found = append(found, path)
			}

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %v: %w", root, err, ErrFileAccess)
	}

	return found, nil
}

// expand substitutes one bracket index into the filename pattern.
func expand(pattern string, exposure int) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}
	return fmt.Sprintf(pattern, exposure)
}
