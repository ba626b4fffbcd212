// Package objects resolves hashes into typed git objects.
//
// Every failure (malformed hash, missing object, wrong kind, broken path)
// collapses into a nil result. Callers branch on presence only.
package objects

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// Kind is the concrete type of a resolved object.
type Kind string

const (
	KindCommit Kind = "commit"
	KindTree   Kind = "tree"
	KindBlob   Kind = "blob"
)

// kindOf maps a stored object type to a Kind. The second result is false
// for types this package does not resolve (tags, deltas).
func kindOf(t plumbing.ObjectType) (Kind, bool) {
	switch t {
	case plumbing.CommitObject:
		return KindCommit, true
	case plumbing.TreeObject:
		return KindTree, true
	case plumbing.BlobObject:
		return KindBlob, true
	default:
		return "", false
	}
}

// entryKind derives the kind of the object a tree entry points at.
func entryKind(m filemode.FileMode) Kind {
	switch m {
	case filemode.Dir:
		return KindTree
	case filemode.Submodule:
		return KindCommit
	default:
		return KindBlob
	}
}

// Signature identifies an author or committer.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// Commit is a resolved commit object.
type Commit struct {
	Hash         string    `json:"hash"`
	TreeHash     string    `json:"tree_hash"`
	ParentHashes []string  `json:"parent_hashes"`
	Message      string    `json:"message"`
	Author       Signature `json:"author"`
	Committer    Signature `json:"committer"`
}

// Kind returns KindCommit.
func (c *Commit) Kind() Kind { return KindCommit }

// Entry is one row of a tree.
type Entry struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Kind Kind   `json:"kind"`
	Mode string `json:"mode"`
}

// Tree is a resolved tree object. Entries keep their on-disk order.
type Tree struct {
	Hash    string  `json:"hash"`
	Entries []Entry `json:"entries"`
}

// Kind returns KindTree.
func (t *Tree) Kind() Kind { return KindTree }

// Entry returns the entry called name.
func (t *Tree) Entry(name string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Blob is a resolved blob object.
type Blob struct {
	Hash    string `json:"hash"`
	Size    int64  `json:"size"`
	Content []byte `json:"-"`
}

// Kind returns KindBlob.
func (b *Blob) Kind() Kind { return KindBlob }

// Object is implemented by Commit, Tree and Blob.
type Object interface {
	Kind() Kind
}
