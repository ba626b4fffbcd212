package objects

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
)

// Source is the raw object lookup capability a Resolver reads from.
// *gitstore.Handle implements it.
type Source interface {
	Lookup(hash string) (plumbing.EncodedObject, error)
}

// Resolver turns hashes into typed objects.
type Resolver struct {
	logger  *logging.Logger
	metrics *Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for absent-result diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithMetrics enables lookup counters.
func WithMetrics(m *Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a Resolver. Without options it logs nothing and
// records no metrics.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tree resolves hash to a tree. It returns nil when hash is malformed,
// absent, or names an object of another kind.
func (r *Resolver) Tree(ctx context.Context, src Source, hash string) *Tree {
	obj := r.lookup(ctx, src, hash, KindTree)
	if obj == nil {
		return nil
	}

	var t object.Tree
	if err := t.Decode(obj); err != nil {
		r.absent(ctx, KindTree, hash, ResultError, err)
		return nil
	}

	tree := &Tree{
		Hash:    t.Hash.String(),
		Entries: make([]Entry, 0, len(t.Entries)),
	}
	for _, e := range t.Entries {
		tree.Entries = append(tree.Entries, Entry{
			Name: e.Name,
			Hash: e.Hash.String(),
			Kind: entryKind(e.Mode),
			Mode: e.Mode.String(),
		})
	}
	r.metrics.observe(KindTree, ResultFound)
	return tree
}

// Commit resolves hash to a commit. A tree or blob hash yields nil.
func (r *Resolver) Commit(ctx context.Context, src Source, hash string) *Commit {
	obj := r.lookup(ctx, src, hash, KindCommit)
	if obj == nil {
		return nil
	}

	var c object.Commit
	if err := c.Decode(obj); err != nil {
		r.absent(ctx, KindCommit, hash, ResultError, err)
		return nil
	}

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	r.metrics.observe(KindCommit, ResultFound)
	return &Commit{
		Hash:         c.Hash.String(),
		TreeHash:     c.TreeHash.String(),
		ParentHashes: parents,
		Message:      c.Message,
		Author:       signature(c.Author),
		Committer:    signature(c.Committer),
	}
}

// Blob resolves commitHash, walks its tree along the slash separated path
// and returns the blob at the last component. It returns nil when the
// commit is unresolvable, a segment is missing, an intermediate segment is
// not a tree, or the last segment is not a blob.
func (r *Resolver) Blob(ctx context.Context, src Source, commitHash, path string) *Blob {
	commit := r.Commit(ctx, src, commitHash)
	if commit == nil {
		return nil
	}

	segments, ok := splitPath(path)
	if !ok {
		r.logger.Debug(ctx, "blob path rejected", logging.Path(path))
		return nil
	}

	treeHash := commit.TreeHash
	for i, segment := range segments {
		tree := r.Tree(ctx, src, treeHash)
		if tree == nil {
			return nil
		}
		entry, found := tree.Entry(segment)
		if !found {
			r.logger.Debug(ctx, "blob path segment not found",
				logging.Commit(commit.Hash),
				logging.Path(path),
				zap.String("segment", segment),
			)
			return nil
		}

		if i == len(segments)-1 {
			if entry.Kind != KindBlob {
				r.absent(ctx, KindBlob, entry.Hash, ResultMismatch, nil)
				return nil
			}
			return r.blob(ctx, src, entry.Hash)
		}

		if entry.Kind != KindTree {
			r.absent(ctx, KindTree, entry.Hash, ResultMismatch, nil)
			return nil
		}
		treeHash = entry.Hash
	}
	return nil
}

// FindBlobByName searches the top level of commitHash's tree for a blob
// entry called name. It returns the entry together with the commit it was
// found under, or nils when there is no match.
func (r *Resolver) FindBlobByName(ctx context.Context, src Source, commitHash, name string) (*Entry, *Commit) {
	commit := r.Commit(ctx, src, commitHash)
	if commit == nil {
		return nil, nil
	}
	tree := r.Tree(ctx, src, commit.TreeHash)
	if tree == nil {
		return nil, nil
	}

	for _, e := range tree.Entries {
		if e.Name == name && e.Kind == KindBlob {
			entry := e
			return &entry, commit
		}
	}
	r.logger.Debug(ctx, "blob name not found",
		logging.Commit(commit.Hash),
		zap.String("name", name),
	)
	return nil, nil
}

func (r *Resolver) blob(ctx context.Context, src Source, hash string) *Blob {
	obj := r.lookup(ctx, src, hash, KindBlob)
	if obj == nil {
		return nil
	}

	var b object.Blob
	if err := b.Decode(obj); err != nil {
		r.absent(ctx, KindBlob, hash, ResultError, err)
		return nil
	}
	content, err := readBlob(&b)
	if err != nil {
		r.absent(ctx, KindBlob, hash, ResultError, err)
		return nil
	}

	r.metrics.observe(KindBlob, ResultFound)
	return &Blob{
		Hash:    b.Hash.String(),
		Size:    b.Size,
		Content: content,
	}
}

// lookup fetches hash from src and returns it only when it is of kind want.
func (r *Resolver) lookup(ctx context.Context, src Source, hash string, want Kind) plumbing.EncodedObject {
	obj, err := src.Lookup(hash)
	if err != nil {
		r.absent(ctx, want, hash, classify(err), err)
		return nil
	}

	got, ok := kindOf(obj.Type())
	if !ok || got != want {
		r.absent(ctx, want, hash, ResultMismatch, fmt.Errorf("object is a %s", obj.Type()))
		return nil
	}
	return obj
}

func (r *Resolver) absent(ctx context.Context, kind Kind, hash, result string, err error) {
	r.metrics.observe(kind, result)

	fields := []zap.Field{logging.Kind(string(kind)), logging.Hash(hash), logging.Result(result)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if result == ResultError {
		r.logger.Warn(ctx, "object lookup failed", fields...)
		return
	}
	r.logger.Debug(ctx, "object not resolved", fields...)
}

func classify(err error) string {
	switch {
	case errors.Is(err, gitstore.ErrInvalidHash):
		return ResultInvalid
	case errors.Is(err, gitstore.ErrObjectNotFound), errors.Is(err, gitstore.ErrAmbiguousHash):
		return ResultMissing
	default:
		return ResultError
	}
}

// splitPath splits a slash separated tree path. Leading and trailing
// slashes are ignored; empty, "." and ".." segments are rejected.
func splitPath(p string) ([]string, bool) {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil, false
	}
	segments := strings.Split(p, "/")
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return nil, false
		}
	}
	return segments, true
}

func readBlob(b *object.Blob) ([]byte, error) {
	rd, err := b.Reader()
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

func signature(s object.Signature) Signature {
	return Signature{Name: s.Name, Email: s.Email, When: s.When}
}
