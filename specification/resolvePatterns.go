package specification

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IsDataModel reports whether p names a Core Data model.
func IsDataModel(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".xcdatamodel", ".xcdatamodeld":
		return true
	}
	return false
}

// IsExternal reports whether a resolved path lies outside the base directory.
// External entries are absolute; they are placed in the bundle by base name.
func IsExternal(p string) bool {
	return filepath.IsAbs(p)
}

// resolvePatterns expands each pattern in order. Patterns are matched with
// doublestar semantics, so "**" crosses directories. Patterns inside baseDir
// yield paths relative to it; absolute patterns and patterns that climb out
// with ".." yield absolute paths. Duplicates are dropped, keeping the first
// occurrence. A pattern that matches nothing contributes nothing.
func resolvePatterns(baseDir, field string, patterns []string, keep func(string) bool) ([]string, error) {
	var result []string
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		matches, err := expand(baseDir, pattern)
		if err != nil {
			return nil, invalid(field, "pattern %q: %v", pattern, err)
		}
		for _, m := range matches {
			if keep != nil && !keep(m) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			result = append(result, m)
		}
	}
	return result, nil
}

func expand(baseDir, pattern string) ([]string, error) {
	cleaned := path.Clean(filepath.ToSlash(pattern))

	if filepath.IsAbs(pattern) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			return nil, err
		}
		for i, m := range matches {
			if abs, err := filepath.Abs(m); err == nil {
				matches[i] = abs
			}
		}
		return matches, nil
	}

	if !doublestar.ValidatePattern(cleaned) {
		return nil, doublestar.ErrBadPattern
	}
	matches, err := doublestar.Glob(os.DirFS(baseDir), cleaned)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.FromSlash(m)
	}
	return matches, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
