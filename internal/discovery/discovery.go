// Package discovery walks a source tree and selects the files to analyze.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/boxgraph/internal/models"
)

type includeRule struct {
	re     *regexp.Regexp // nil when the pattern does not compile
	suffix string
}

// Discoverer selects files under a root by include patterns and exclude substrings.
type Discoverer struct {
	root     string
	include  []includeRule
	exclude  []string
	skipDirs []string
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithSkipDirs skips whole subtrees by slash-separated path relative to the
// root. Unlike exclude entries they match only the directory itself and
// paths beneath it.
func WithSkipDirs(dirs ...string) Option {
	return func(d *Discoverer) {
		for _, dir := range dirs {
			dir = strings.Trim(path.Clean(dir), "/")
			if dir != "" && dir != "." {
				d.skipDirs = append(d.skipDirs, dir)
			}
		}
	}
}

// New creates a Discoverer rooted at root.
//
// Include patterns are permissive: the first "**/" is dropped and
// the first "*" becomes ".*", and the result is matched anywhere in the
// relative path. A path also matches when it ends with the pattern minus its
// first "*". Exclude entries are plain substrings.
func New(root string, include, exclude []string, opts ...Option) (*Discoverer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve root: %w", err)
	}
	d := &Discoverer{root: abs, exclude: exclude}
	for _, opt := range opts {
		opt(d)
	}
	for _, p := range include {
		d.include = append(d.include, compileInclude(p))
	}
	return d, nil
}

func compileInclude(pattern string) includeRule {
	expr := strings.Replace(pattern, "**/", "", 1)
	expr = strings.Replace(expr, "*", ".*", 1)
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	return includeRule{re: re, suffix: strings.Replace(pattern, "*", "", 1)}
}

// Root returns the absolute scan root.
func (d *Discoverer) Root() string {
	return d.root
}

// Excluded reports whether a slash-separated relative path contains an
// exclude substring or lies in a skipped directory.
func (d *Discoverer) Excluded(rel string) bool {
	for _, dir := range d.skipDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	for _, e := range d.exclude {
		if strings.Contains(rel, e) {
			return true
		}
	}
	return false
}

// Included reports whether a slash-separated relative path matches an include pattern.
func (d *Discoverer) Included(rel string) bool {
	for _, r := range d.include {
		if r.re != nil && r.re.MatchString(rel) {
			return true
		}
		if strings.HasSuffix(rel, r.suffix) {
			return true
		}
	}
	return false
}

// Discover walks the tree depth-first in lexical order. Any error reading a
// directory or stat-ing a file aborts the walk.
func (d *Discoverer) Discover(ctx context.Context) ([]models.FileDescriptor, error) {
	var out []models.FileDescriptor
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == d.root {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.Excluded(rel) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		if !d.Included(rel) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		out = append(out, models.FileDescriptor{
			RelPath: rel,
			AbsPath: p,
			Type:    FileType(entry.Name()),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: walk %s: %w", d.root, err)
	}
	return out, nil
}

var extTypes = map[string]models.FileType{
	".cpp": models.TypeSource,
	".h":   models.TypeHeader,
	".c":   models.TypeSource,
	".md":  models.TypeDocumentation,
	".sh":  models.TypeScript,
	".pro": models.TypeProject,
	"":     models.TypeConfig,
}

// FileType classifies a file by the lowercased extension of its base name.
func FileType(name string) models.FileType {
	if t, ok := extTypes[strings.ToLower(Ext(name))]; ok {
		return t
	}
	return models.TypeOther
}

// Ext returns the extension of the base name of p. Leading dots do not start
// an extension, so ".gitignore" and "Dockerfile" have none.
func Ext(p string) string {
	base := filepath.Base(filepath.FromSlash(p))
	trimmed := strings.TrimLeft(base, ".")
	if trimmed == "" {
		return ""
	}
	return filepath.Ext(trimmed)
}
