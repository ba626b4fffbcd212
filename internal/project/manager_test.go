package project

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/inspire/internal/gitstore"
	"github.com/fyrsmithlabs/inspire/internal/logging"
)

func newTestManager(t *testing.T) *SQLiteManager {
	t.Helper()
	dir := t.TempDir()
	m, err := NewSQLiteManager(filepath.Join(dir, "inspire.db"), filepath.Join(dir, "data"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func mustUser(t *testing.T, m *SQLiteManager, username string) *User {
	t.Helper()
	u, err := m.CreateUser(context.Background(), username)
	require.NoError(t, err)
	return u
}

func TestManager_CreateUser(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	u := mustUser(t, m, "alice")
	assert.NotZero(t, u.ID)

	got, err := m.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got, err = m.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = m.CreateUser(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = m.CreateUser(ctx, "not valid")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = m.GetUser(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger()
	dir := t.TempDir()
	m, err := NewSQLiteManager(filepath.Join(dir, "inspire.db"), filepath.Join(dir, "data"), logger.Logger)
	require.NoError(t, err)
	defer m.Close()

	alice := mustUser(t, m, "alice")
	p, err := m.Create(ctx, alice.ID, "demo", false)
	require.NoError(t, err)

	assert.NotEmpty(t, p.DataPath, "data path is set after creation")
	assert.Equal(t, "alice", p.OwnerUsername)
	assert.DirExists(t, p.DataPath)

	_, err = gitstore.Open(p.BarePath())
	assert.NoError(t, err, "bare repository exists")
	_, err = gitstore.Open(p.SatellitePath())
	assert.NoError(t, err, "satellite repository exists")

	got, err := m.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.DataPath, got.DataPath)
	assert.Equal(t, p.Name, got.Name)

	logger.AssertLogged(t, zapcore.InfoLevel, "project created")
	logger.AssertField(t, "project created", "project.name", "demo")
}

func TestManager_CreateValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")

	_, err := m.Create(ctx, alice.ID, "", false)
	assert.ErrorIs(t, err, ErrInvalidProjectName, "invalid without a name")

	_, err = m.Create(ctx, alice.ID+100, "demo", false)
	assert.ErrorIs(t, err, ErrUserNotFound, "invalid without a user")

	n, err := m.CountWithDeleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManager_NameUniqueness(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	bob := mustUser(t, m, "bob")

	first, err := m.Create(ctx, alice.ID, "demo", false)
	require.NoError(t, err)

	_, err = m.Create(ctx, alice.ID, "demo", false)
	assert.ErrorIs(t, err, ErrProjectExists, "unique name per user")

	_, err = m.Create(ctx, bob.ID, "demo", false)
	assert.NoError(t, err, "same name for different users")

	require.NoError(t, m.Delete(ctx, first.ID))

	second, err := m.Create(ctx, alice.ID, "demo", false)
	require.NoError(t, err, "same name per user after the first is deleted")
	assert.NotEqual(t, first.DataPath, second.DataPath)

	// The deleted project's repositories are left in place.
	_, err = gitstore.Open(first.BarePath())
	assert.NoError(t, err)
}

func TestManager_FailedCreateLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")

	// A file where the owner directory should be makes repository creation fail.
	require.NoError(t, os.WriteFile(filepath.Join(m.dataDir, "alice"), []byte("x"), 0644))

	_, err := m.Create(ctx, alice.ID, "demo", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create repositories")

	n, err := m.CountWithDeleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManager_ConcurrentCreateSameName(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Create(ctx, alice.ID, "demo", false)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrProjectExists)
	}
	assert.Equal(t, 1, created)
}

func TestManager_SoftDelete(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	p, err := m.Create(ctx, alice.ID, "demo", false)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, p.ID))

	live, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, live)

	all, err := m.CountWithDeleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all)

	err = m.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	all, err = m.CountWithDeleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all, "second delete does not remove the record")

	_, err = m.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	_, err = m.GetByName(ctx, alice.ID, "demo")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestManager_InspiringProjectsFor(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")

	_, err := m.Create(ctx, alice.ID, "t1", false)
	require.NoError(t, err)
	_, err = m.Create(ctx, alice.ID, "t2", true)
	require.NoError(t, err)

	own, err := m.InspiringProjectsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, own)

	others, err := m.InspiringProjectsFor(ctx, alice.ID+1)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "t1", others[0].Name)
}

func TestManager_InspiringProjectsSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	bob := mustUser(t, m, "bob")

	p, err := m.Create(ctx, alice.ID, "public", false)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, p.ID))

	got, err := m.InspiringProjectsFor(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestManager_SetPrivateAndList(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	bob := mustUser(t, m, "bob")

	a, err := m.Create(ctx, alice.ID, "a", false)
	require.NoError(t, err)
	_, err = m.Create(ctx, alice.ID, "b", false)
	require.NoError(t, err)

	list, err := m.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	require.NoError(t, m.SetPrivate(ctx, a.ID, true))
	got, err := m.GetByName(ctx, alice.ID, "a")
	require.NoError(t, err)
	assert.True(t, got.Private)

	inspiring, err := m.InspiringProjectsFor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inspiring, 1)
	assert.Equal(t, "b", inspiring[0].Name)

	assert.ErrorIs(t, m.SetPrivate(ctx, "00000000-0000-0000-0000-000000000000", true), ErrProjectNotFound)
}

func TestManager_OrderingFollowsCreationTime(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	bob := mustUser(t, m, "bob")

	// Inserted in reverse so rowid order disagrees with creation time.
	newer, err := m.Create(ctx, alice.ID, "newer", false)
	require.NoError(t, err)
	older, err := m.Create(ctx, alice.ID, "older", false)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	setCreated := func(id string, at time.Time) {
		_, err := m.db.ExecContext(ctx, `UPDATE projects SET created_at = ? WHERE id = ?`, formatTime(at), id)
		require.NoError(t, err)
	}
	setCreated(older.ID, base)
	setCreated(newer.ID, base.Add(500*time.Millisecond))

	list, err := m.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "older", list[0].Name)
	assert.Equal(t, "newer", list[1].Name)
	assert.True(t, list[0].CreatedAt.Equal(base))

	inspiring, err := m.InspiringProjectsFor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inspiring, 2)
	assert.Equal(t, "newer", inspiring[0].Name)
	assert.Equal(t, "older", inspiring[1].Name)
}

func TestFormatTimeIsFixedWidth(t *testing.T) {
	whole := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC))
	half := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 500_000_000, time.UTC))
	assert.Equal(t, "2026-01-01T00:00:05.000000000Z", whole)
	assert.Len(t, half, len(whole))
	assert.Less(t, whole, half)

	got, err := parseTime(half)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, got.Sub(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)))
}

func TestManager_DataPathIsImmutable(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	alice := mustUser(t, m, "alice")
	p, err := m.Create(ctx, alice.ID, "demo", false)
	require.NoError(t, err)

	_, err = m.db.ExecContext(ctx, `UPDATE projects SET data_path = ? WHERE id = ?`, "/elsewhere", p.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_path is immutable")

	got, err := m.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.DataPath, got.DataPath)
}

func TestManager_GetInvalidID(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidProjectID)
}
