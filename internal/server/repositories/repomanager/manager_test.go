package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestNew(t *testing.T) {
	m, err := New(DriverPostgres)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)

	m, err = New(DriverSQLite)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepositoryManager{}, m)

	_, err = New("oracle")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	pg := NewPostgresRepositoryManager()
	assert.IsType(t, &accounts.PostgresRepository{}, pg.Accounts(db))
	assert.IsType(t, &credentials.PostgresRepository{}, pg.Credentials(db))
	assert.IsType(t, &auditlog.PostgresRepository{}, pg.AuditLog(db))

	lite := NewSQLiteRepositoryManager()
	assert.IsType(t, &accounts.SQLiteRepository{}, lite.Accounts(db))
	assert.IsType(t, &credentials.SQLiteRepository{}, lite.Credentials(db))
	assert.IsType(t, &auditlog.SQLiteRepository{}, lite.AuditLog(db))
}

func TestRunMigrations_Dirs(t *testing.T) {
	db := newDB(t)

	var dirs []string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		dirs = append(dirs, dir)
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	require.NoError(t, NewSQLiteRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, []string{"postgres", "sqlite"}, dirs)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestOpen_SQLiteMigrateAndUse(t *testing.T) {
	ctx := context.Background()

	db, m, err := Open(ctx, DriverSQLite, "file:repomanager_open?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, m.RunMigrations(ctx, db))
	// second run is a no-op
	require.NoError(t, m.RunMigrations(ctx, db))

	acc, err := m.Accounts(db).FindByUsername(ctx, "alice123")
	require.NoError(t, err)
	assert.Nil(t, acc)

	services, err := m.Credentials(db).ListServices(ctx, "alice123")
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}
