package gitstore

import (
	"errors"
	"fmt"
)

// ErrRepoOpen is the parent of every repository open failure.
var ErrRepoOpen = errors.New("repository open failed")

var (
	// ErrRepoNotFound indicates nothing exists at the repository path.
	ErrRepoNotFound = fmt.Errorf("%w: repository not found", ErrRepoOpen)

	// ErrRepoCorrupt indicates the path exists but is not a valid repository.
	ErrRepoCorrupt = fmt.Errorf("%w: not a valid repository", ErrRepoOpen)
)

var (
	// ErrInvalidHash indicates a malformed object identifier.
	ErrInvalidHash = errors.New("invalid object hash")

	// ErrObjectNotFound indicates a well-formed identifier with no object behind it.
	ErrObjectNotFound = errors.New("object not found")

	// ErrAmbiguousHash indicates an abbreviated hash matching several objects.
	ErrAmbiguousHash = errors.New("ambiguous object hash")

	// ErrEmptyRepository indicates HEAD does not point at a commit yet.
	ErrEmptyRepository = errors.New("repository has no commits")
)
