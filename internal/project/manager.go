package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
)

// Manager owns project records and their on-disk repositories.
type Manager interface {
	// CreateUser registers a new project owner.
	CreateUser(ctx context.Context, username string) (*User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id int64) (*User, error)

	// GetUserByName retrieves a user by username.
	GetUserByName(ctx context.Context, username string) (*User, error)

	// Create creates a project and its repositories. Either both the record
	// and the repositories exist on return, or neither does.
	Create(ctx context.Context, ownerID int64, name string, private bool) (*Project, error)

	// Get retrieves a live project by ID.
	Get(ctx context.Context, id string) (*Project, error)

	// GetByName retrieves the live project called name owned by ownerID.
	GetByName(ctx context.Context, ownerID int64, name string) (*Project, error)

	// List returns the live projects owned by ownerID, oldest first.
	List(ctx context.Context, ownerID int64) ([]*Project, error)

	// SetPrivate changes a live project's visibility.
	SetPrivate(ctx context.Context, id string, private bool) error

	// Delete soft-deletes a live project. Its repositories are kept.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live projects.
	Count(ctx context.Context) (int, error)

	// CountWithDeleted returns the number of projects including soft-deleted ones.
	CountWithDeleted(ctx context.Context) (int, error)

	// InspiringProjectsFor returns the public live projects not owned by
	// userID, newest first.
	InspiringProjectsFor(ctx context.Context, userID int64) ([]*Project, error)

	// Close releases the underlying database.
	Close() error
}

// SQLiteManager implements Manager on SQLite.
type SQLiteManager struct {
	db      *sql.DB
	dataDir string
	logger  *logging.Logger
}

// NewSQLiteManager opens (or creates) the database at dbPath. Project
// repositories are created under dataDir.
func NewSQLiteManager(dbPath, dataDir string, logger *logging.Logger) (*SQLiteManager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// One connection serializes writers, which keeps the live-name check
	// and the insert atomic.
	db.SetMaxOpenConns(1)

	if err := initTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return &SQLiteManager{db: db, dataDir: dataDir, logger: logger.Named("project")}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			private INTEGER NOT NULL DEFAULT 0,
			data_path TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			deleted_at TEXT
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_owner_name_live
		ON projects(user_id, name) WHERE deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_projects_public_live
		ON projects(private, deleted_at, created_at);

		CREATE TRIGGER IF NOT EXISTS projects_data_path_immutable
		BEFORE UPDATE OF data_path ON projects
		BEGIN
			SELECT RAISE(ABORT, 'data_path is immutable');
		END;
	`)
	return err
}

// CreateUser registers a new project owner.
func (m *SQLiteManager) CreateUser(ctx context.Context, username string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := m.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`,
		username, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user ID: %w", err)
	}
	return &User{ID: id, Username: username, CreatedAt: now}, nil
}

// GetUser retrieves a user by ID.
func (m *SQLiteManager) GetUser(ctx context.Context, id int64) (*User, error) {
	row := m.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u, err
}

// GetUserByName retrieves a user by username.
func (m *SQLiteManager) GetUserByName(ctx context.Context, username string) (*User, error) {
	row := m.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return u, err
}

// Create creates a project record and its repositories in one transaction.
// The record only becomes visible once both repositories exist.
func (m *SQLiteManager) Create(ctx context.Context, ownerID int64, name string, private bool) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	owner, err := m.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p, err := newProject(owner, name, private, m.dataDir)
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, private, data_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Private, p.DataPath, formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrProjectExists, owner.Username, name)
		}
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	if err := gitstore.InitProject(p.DataPath); err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		_ = os.RemoveAll(p.BarePath())
		_ = os.RemoveAll(p.DataPath)
		return nil, fmt.Errorf("failed to commit project: %w", err)
	}

	m.logger.Info(logging.WithProject(ctx, p.ref()), "project created",
		zap.String("data_path", p.DataPath),
		zap.Bool("private", p.Private),
	)
	return p, nil
}

const projectColumns = `
	p.id, p.user_id, u.username, p.name, p.private, p.data_path,
	p.created_at, p.updated_at, p.deleted_at`

// Get retrieves a live project by ID.
func (m *SQLiteManager) Get(ctx context.Context, id string) (*Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	row := m.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.user_id
		WHERE p.id = ? AND p.deleted_at IS NULL`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, err
}

// GetByName retrieves the live project called name owned by ownerID.
func (m *SQLiteManager) GetByName(ctx context.Context, ownerID int64, name string) (*Project, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ? AND p.name = ? AND p.deleted_at IS NULL`, ownerID, name)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return p, err
}

// List returns the live projects owned by ownerID, oldest first.
func (m *SQLiteManager) List(ctx context.Context, ownerID int64) ([]*Project, error) {
	return m.queryProjects(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ? AND p.deleted_at IS NULL
		ORDER BY p.created_at ASC, p.rowid ASC`, ownerID)
}

// InspiringProjectsFor returns the public live projects not owned by userID.
func (m *SQLiteManager) InspiringProjectsFor(ctx context.Context, userID int64) ([]*Project, error) {
	return m.queryProjects(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.user_id
		WHERE p.private = 0 AND p.deleted_at IS NULL AND p.user_id != ?
		ORDER BY p.created_at DESC, p.rowid DESC`, userID)
}

// SetPrivate changes a live project's visibility.
func (m *SQLiteManager) SetPrivate(ctx context.Context, id string, private bool) error {
	res, err := m.db.ExecContext(ctx, `
		UPDATE projects SET private = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		private, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireOneRow(res, id)
}

// Delete soft-deletes a live project. Deleting an already deleted project
// returns ErrProjectNotFound and changes nothing.
func (m *SQLiteManager) Delete(ctx context.Context, id string) error {
	now := formatTime(time.Now().UTC())
	res, err := m.db.ExecContext(ctx, `
		UPDATE projects SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err := requireOneRow(res, id); err != nil {
		return err
	}
	m.logger.Info(ctx, "project soft-deleted", zap.String("project.id", id))
	return nil
}

// Count returns the number of live projects.
func (m *SQLiteManager) Count(ctx context.Context) (int, error) {
	return m.count(ctx, `SELECT COUNT(*) FROM projects WHERE deleted_at IS NULL`)
}

// CountWithDeleted returns the number of projects including soft-deleted ones.
func (m *SQLiteManager) CountWithDeleted(ctx context.Context) (int, error) {
	return m.count(ctx, `SELECT COUNT(*) FROM projects`)
}

// Close releases the database.
func (m *SQLiteManager) Close() error {
	return m.db.Close()
}

func (m *SQLiteManager) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

func (m *SQLiteManager) queryProjects(ctx context.Context, query string, args ...any) ([]*Project, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	var created string
	if err := s.Scan(&u.ID, &u.Username, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var created, updated string
	var deleted sql.NullString
	if err := s.Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Name, &p.Private, &p.DataPath,
		&created, &updated, &deleted); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if deleted.Valid {
		t, err := parseTime(deleted.String)
		if err != nil {
			return nil, err
		}
		p.DeletedAt = &t
	}
	return &p, nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// timeLayout is fixed width so that stored timestamps sort as text in
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
