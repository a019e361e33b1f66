package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/tempocut/internal/usecase"
)

// Discover resolves CLI inputs into an ordered list of files with extension
// ext (case-insensitive). Files are kept in argument order; each directory
// is walked recursively and its matches are appended sorted. Duplicates are
// dropped. Inputs that do not exist are logged and skipped, and output
// directories of earlier runs are never descended into.
func Discover(inputs []string, ext string, logger hclog.Logger) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if seen[p] {
			return
		}
		seen[p] = true
		files = append(files, p)
	}

	for _, in := range inputs {
		fi, err := os.Stat(in)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("input does not exist, skipping", "path", in)
				continue
			}
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if !fi.IsDir() {
			if hasExt(in, ext) {
				add(in)
			}
			continue
		}

		var found []string
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != in && d.Name() == usecase.OutputSubdir {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExt(path, ext) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", in, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return files, nil
}

func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
