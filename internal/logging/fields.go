package logging

import (
	"go.uber.org/zap"
)

// Field keys shared with span attributes, so logs and traces of the same
// lookup can be joined.
const (
	KeyKind   = "git.kind"
	KeyHash   = "git.hash"
	KeyCommit = "git.commit"
	KeyPath   = "git.path"
	KeyResult = "lookup.result"
)

// Kind names the git object type a lookup wanted.
func Kind(kind string) zap.Field { return zap.String(KeyKind, kind) }

// Hash is the hash or abbreviated prefix a lookup was given.
func Hash(hash string) zap.Field { return zap.String(KeyHash, hash) }

// Commit is the commit a path or name was resolved against.
func Commit(hash string) zap.Field { return zap.String(KeyCommit, hash) }

// Path is a slash separated path inside a commit's tree.
func Path(p string) zap.Field { return zap.String(KeyPath, p) }

// Result is the outcome label of a lookup, e.g. "not_found".
func Result(result string) zap.Field { return zap.String(KeyResult, result) }
