// Package scanner collects source files from a project directory.
//
// Collection is a recursive walk filtered by an extension allow-list, a
// directory name deny-list, and optional glob ignore patterns. Deny-listed
// directories are never descended into. A traversal error (unlistable
// directory, unstatable entry) aborts the entire collection; there is no
// partial-result recovery at this stage.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Options configures collection behavior.
type Options struct {
	// Extensions is the allow-list of file extensions (e.g. ".go", ".py").
	// Matching is case-insensitive; a leading dot is added if missing.
	Extensions []string

	// IgnoreDirs is a deny-list of directory names skipped entirely
	// (e.g. ".git", "node_modules")
	IgnoreDirs []string

	// IgnorePatterns are glob patterns matched against the slash-normalized
	// path relative to the scan root. Matching files and directories are
	// excluded; matching directories are not descended into.
	IgnorePatterns []string
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Scanner walks a root directory and returns the file paths that pass its
// filters, in traversal order.
type Scanner struct {
	root     string
	extMap   map[string]bool
	skipDirs map[string]bool
	ignores  []compiledPattern
}

// New creates a Scanner for the given root directory.
// Returns an error if any ignore pattern fails to compile.
func New(root string, opts Options) (*Scanner, error) {
	s := &Scanner{
		root:     root,
		extMap:   make(map[string]bool),
		skipDirs: make(map[string]bool),
	}

	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extMap[strings.ToLower(ext)] = true
	}

	for _, dir := range opts.IgnoreDirs {
		s.skipDirs[dir] = true
	}

	for _, pattern := range opts.IgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		s.ignores = append(s.ignores, compiledPattern{pattern: pattern, glob: g})
	}

	return s, nil
}

// Collect walks the root and returns matching file paths in traversal order.
//
// Any error during traversal aborts the whole collection. The returned paths
// are the walk paths (root-relative when the root itself is relative), which
// keeps digest section headings readable for the common `root: .` case.
func (s *Scanner) Collect() ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", s.root)
	}

	var files []string

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Traversal errors are fatal to the whole collection
			return fmt.Errorf("error accessing %s: %w", path, err)
		}

		// The root itself is never filtered
		if path == s.root {
			return nil
		}

		relPath, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, relErr)
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if s.matchesIgnore(relPath) || s.matchesIgnore(relPath+"/**") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !s.extMap[ext] {
			return nil
		}

		if s.matchesIgnore(relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

// matchesIgnore checks if a relative path matches any ignore pattern.
func (s *Scanner) matchesIgnore(relPath string) bool {
	for _, cp := range s.ignores {
		if cp.glob.Match(relPath) {
			return true
		}
	}
	return false
}
