package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
)

// Common errors.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectExists      = errors.New("project already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidProjectID   = errors.New("invalid project ID")
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrInvalidUsername    = errors.New("invalid username")
)

const maxNameLen = 255

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// User owns projects.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a project record. DataPath is assigned once, at creation, and
// never changes.
type Project struct {
	ID            string     `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	OwnerUsername string     `json:"owner_username"`
	Name          string     `json:"name"`
	Private       bool       `json:"private"`
	DataPath      string     `json:"data_path"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// newProject builds a record for owner with a fresh ID and a data path
// under dataDir.
func newProject(owner *User, name string, private bool, dataDir string) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	return &Project{
		ID:            id,
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Name:          name,
		Private:       private,
		DataPath:      filepath.Join(dataDir, owner.Username, id),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// BarePath returns the location of the bare repository.
func (p *Project) BarePath() string {
	return gitstore.BarePath(p.DataPath)
}

// SatellitePath returns the satellite's git metadata directory.
func (p *Project) SatellitePath() string {
	return gitstore.SatellitePath(p.DataPath)
}

// IsDeleted reports whether the project was soft-deleted.
func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ref returns the logging reference for p.
func (p *Project) ref() *logging.ProjectRef {
	return &logging.ProjectRef{ID: p.ID, Owner: p.OwnerUsername, Name: p.Name}
}

// ValidateName checks a project name. Names become a path segment, so
// slashes and dot segments are rejected.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidProjectName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidProjectName, maxNameLen)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: name cannot contain slashes", ErrInvalidProjectName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidProjectName, name)
	}
	return nil
}

// ValidateUsername checks a username. Usernames are used unescaped in URLs
// and paths.
func ValidateUsername(username string) error {
	if len(username) == 0 || len(username) > 64 || !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q (must be 1-64 alphanumeric, hyphen or underscore characters)", ErrInvalidUsername, username)
	}
	return nil
}

// ValidateID checks a project ID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}
