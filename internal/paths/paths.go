// Package paths builds the URL and filesystem locations of a project's
// derived assets (thumbnails, inspiration images).
//
// Everything here is a pure string computation. Nothing touches the
// filesystem, so callers are responsible for creating directories.
package paths

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Category identifies a family of derived assets.
type Category string

const (
	// CategoryThumbnails holds per-commit thumbnails.
	CategoryThumbnails Category = "thumbnails"

	// CategoryDesktopInspire holds inspiration images sized for desktop.
	CategoryDesktopInspire Category = "desktop_inspire"

	// CategoryMobileInspire holds inspiration images sized for mobile.
	CategoryMobileInspire Category = "mobile_inspire"
)

var categoryDirs = map[Category]string{
	CategoryThumbnails:     "thumbnails",
	CategoryDesktopInspire: "inspire/desktop",
	CategoryMobileInspire:  "inspire/mobile",
}

// Categories returns every known category.
func Categories() []Category {
	return []Category{CategoryThumbnails, CategoryDesktopInspire, CategoryMobileInspire}
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryDirs[c]; !ok {
		return "", fmt.Errorf("unknown asset category %q", s)
	}
	return c, nil
}

// Dir returns the directory, relative to the project asset root, that holds
// assets of this category. It panics on an unknown category.
func (c Category) Dir() string {
	dir, ok := categoryDirs[c]
	if !ok {
		panic(fmt.Sprintf("paths: unknown asset category %q", string(c)))
	}
	return dir
}

// ValidateKey reports whether key can name an asset. A key is a single
// path element, so it never resolves outside its category directory.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("invalid asset key %q", key)
	case strings.ContainsAny(key, "/\\\x00"):
		return fmt.Errorf("invalid asset key %q: must be a single path element", key)
	}
	return nil
}

// Config holds the prefixes every computed path is rooted at.
type Config struct {
	// Root is the absolute storage root, e.g. "/srv/inspire".
	Root string

	// PublicRoot prefixes the publicly servable copy, e.g. "public".
	PublicRoot string
}

// Resolver computes asset paths from project identity.
type Resolver struct {
	root       string
	publicRoot string
}

// New creates a Resolver from cfg.
func New(cfg Config) *Resolver {
	return &Resolver{
		root:       cfg.Root,
		publicRoot: cfg.PublicRoot,
	}
}

// URLBase returns "/{owner}/{name}" with the project name escaped as a
// single path segment. The owner is expected to be pre-validated.
func (r *Resolver) URLBase(owner, name string) string {
	return "/" + owner + "/" + url.PathEscape(name)
}

// ProjectDir returns the directory holding every derived asset of a project.
func (r *Resolver) ProjectDir(owner, name string, public bool) string {
	dir := path.Join(r.root, "repos", owner, name)
	if public {
		return path.Join(r.publicRoot, dir)
	}
	return dir
}

// ImageFor returns the location of the asset named key in category c.
//
//	{root}/repos/{owner}/{name}/{category dir}/{key}
//
// The public variant is the same path under the public root. Untrusted keys
// must pass ValidateKey first; ImageFor panics on an invalid key or an
// unknown category.
func (r *Resolver) ImageFor(owner, name, key string, c Category, public bool) string {
	if err := ValidateKey(key); err != nil {
		panic("paths: " + err.Error())
	}
	return r.ProjectDir(owner, name, public) + "/" + c.Dir() + "/" + key
}
