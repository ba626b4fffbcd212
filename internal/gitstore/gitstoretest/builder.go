// Package gitstoretest writes fixture objects into a repository so object
// resolution can be tested without shelling out to git.
package gitstoretest

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

// Signature is the author and committer of every fixture commit.
var Signature = object.Signature{
	Name:  "Fixture",
	Email: "fixture@example.com",
	When:  time.Date(2015, time.March, 1, 12, 0, 0, 0, time.UTC),
}

// Builder writes objects into a repository's storage.
type Builder struct {
	t    testing.TB
	repo *git.Repository
}

// New returns a Builder for repo.
func New(t testing.TB, repo *git.Repository) *Builder {
	t.Helper()
	return &Builder{t: t, repo: repo}
}

// NewMemory initializes an empty in-memory repository and returns a
// Builder for it.
func NewMemory(t testing.TB) *Builder {
	t.Helper()
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	return New(t, repo)
}

// Repository returns the repository objects are written to.
func (b *Builder) Repository() *git.Repository {
	return b.repo
}

// Blob stores content and returns its hash.
func (b *Builder) Blob(content []byte) plumbing.Hash {
	b.t.Helper()
	obj := b.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	require.NoError(b.t, err)
	_, err = w.Write(content)
	require.NoError(b.t, err)
	require.NoError(b.t, w.Close())

	h, err := b.repo.Storer.SetEncodedObject(obj)
	require.NoError(b.t, err)
	return h
}

// Tree stores a tree holding entries, sorted the way git sorts them.
func (b *Builder) Tree(entries ...object.TreeEntry) plumbing.Hash {
	b.t.Helper()
	sorted := append([]object.TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})

	obj := b.repo.Storer.NewEncodedObject()
	require.NoError(b.t, (&object.Tree{Entries: sorted}).Encode(obj))
	h, err := b.repo.Storer.SetEncodedObject(obj)
	require.NoError(b.t, err)
	return h
}

// Commit stores a commit of tree with the given parents.
func (b *Builder) Commit(tree plumbing.Hash, message string, parents ...plumbing.Hash) plumbing.Hash {
	b.t.Helper()
	c := &object.Commit{
		Author:       Signature,
		Committer:    Signature,
		Message:      message,
		TreeHash:     tree,
		ParentHashes: parents,
	}
	obj := b.repo.Storer.NewEncodedObject()
	require.NoError(b.t, c.Encode(obj))
	h, err := b.repo.Storer.SetEncodedObject(obj)
	require.NoError(b.t, err)
	return h
}

// SetHead points the branch HEAD refers to (or HEAD itself when detached)
// at commit.
func (b *Builder) SetHead(commit plumbing.Hash) {
	b.t.Helper()
	head, err := b.repo.Storer.Reference(plumbing.HEAD)
	require.NoError(b.t, err)

	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	require.NoError(b.t, b.repo.Storer.SetReference(plumbing.NewHashReference(name, commit)))
}

// CommitFiles builds nested trees for files (slash separated paths), commits
// them on top of the current HEAD and advances HEAD.
func (b *Builder) CommitFiles(message string, files map[string][]byte) plumbing.Hash {
	b.t.Helper()
	var parents []plumbing.Hash
	if ref, err := b.repo.Head(); err == nil {
		parents = append(parents, ref.Hash())
	}

	commit := b.Commit(b.buildTree(files), message, parents...)
	b.SetHead(commit)
	return commit
}

func (b *Builder) buildTree(files map[string][]byte) plumbing.Hash {
	b.t.Helper()
	blobs := make(map[string][]byte)
	dirs := make(map[string]map[string][]byte)
	for p, content := range files {
		dir, rest, nested := strings.Cut(p, "/")
		if !nested {
			blobs[p] = content
			continue
		}
		if dirs[dir] == nil {
			dirs[dir] = make(map[string][]byte)
		}
		dirs[dir][rest] = content
	}

	entries := make([]object.TreeEntry, 0, len(blobs)+len(dirs))
	for name, content := range blobs {
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: b.Blob(content)})
	}
	for name, sub := range dirs {
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: b.buildTree(sub)})
	}
	return b.Tree(entries...)
}

func sortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
