package gitstore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Handle owns one opened repository.
type Handle struct {
	path      string
	repo      *git.Repository
	minPrefix int

	// go-git caches decoded objects internally, so lookups are serialized.
	mu sync.Mutex
}

// Option configures a Handle.
type Option func(*Handle)

// WithMinPrefix sets the shortest accepted abbreviated hash. A value of
// HashLen disables abbreviation.
func WithMinPrefix(n int) Option {
	return func(h *Handle) {
		h.minPrefix = n
	}
}

// Open binds to the repository at path. Bare repositories and ".git"
// metadata directories are both accepted.
//
// Returns ErrRepoNotFound when nothing exists at path and ErrRepoCorrupt
// when path exists but is not a repository store.
func Open(path string, opts ...Option) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRepoCorrupt, path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRepoCorrupt, path)
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: false})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRepoCorrupt, path, err)
	}

	return FromRepository(path, repo, opts...), nil
}

// FromRepository wraps an already opened repository. name is only used for
// diagnostics. This is how in-memory repositories are bound in tests.
func FromRepository(name string, repo *git.Repository, opts ...Option) *Handle {
	h := &Handle{
		path:      name,
		repo:      repo,
		minPrefix: DefaultMinPrefix,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the location the handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// Repository exposes the underlying go-git repository.
func (h *Handle) Repository() *git.Repository {
	return h.repo
}

// Lookup returns the raw object addressed by hash.
//
// Errors: ErrInvalidHash, ErrObjectNotFound, ErrAmbiguousHash.
func (h *Handle) Lookup(hash string) (plumbing.EncodedObject, error) {
	norm, err := NormalizeHash(hash, h.minPrefix)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(norm) == HashLen {
		obj, err := h.repo.Storer.EncodedObject(plumbing.AnyObject, plumbing.NewHash(norm))
		if err != nil {
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, norm)
			}
			return nil, fmt.Errorf("reading object %s: %w", norm, err)
		}
		return obj, nil
	}

	return h.lookupPrefix(norm)
}

// lookupPrefix scans the object database for a unique hash with prefix.
func (h *Handle) lookupPrefix(prefix string) (plumbing.EncodedObject, error) {
	iter, err := h.repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	defer iter.Close()

	var match plumbing.EncodedObject
	ambiguous := false
	err = iter.ForEach(func(obj plumbing.EncodedObject) error {
		if !strings.HasPrefix(obj.Hash().String(), prefix) {
			return nil
		}
		if match != nil && match.Hash() != obj.Hash() {
			ambiguous = true
			return storer.ErrStop
		}
		match = obj
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating objects: %w", err)
	}
	if ambiguous {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousHash, prefix)
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, prefix)
	}
	return match, nil
}

// Head returns the commit hash HEAD resolves to, or ErrEmptyRepository
// when the current branch is unborn.
func (h *Handle) Head() (plumbing.Hash, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ref, err := h.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, ErrEmptyRepository
		}
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash(), nil
}
