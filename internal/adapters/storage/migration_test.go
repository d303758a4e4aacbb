package storage

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMigrator is a mock for the Migrator interface
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

const testDatabaseURL = "postgres://phishcatch@localhost/phishcatch?sslmode=disable"

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	var gotURL string
	engine := func(databaseURL string) (Migrator, error) {
		gotURL = databaseURL
		return mockM, nil
	}

	err := NewMigration(testDatabaseURL, engine).Up()

	assert.NoError(t, err)
	assert.Equal(t, testDatabaseURL, gotURL)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	// ErrNoChange is not an error for Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(databaseURL string) (Migrator, error) {
		return mockM, nil
	}

	assert.NoError(t, NewMigration(testDatabaseURL, engine).Up())
}

func TestMigration_Up_Failure(t *testing.T) {
	mockM := new(MockMigrator)
	upErr := errors.New("syntax error at or near")
	mockM.On("Up").Return(upErr)
	mockM.On("Close").Return(nil, nil)

	engine := func(databaseURL string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(testDatabaseURL, engine).Up()
	assert.ErrorIs(t, err, upErr)
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, errors.New("connection reset"))

	engine := func(databaseURL string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(testDatabaseURL, engine).Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Failure while building the migrator (e.g., bad driver)
	engine := func(databaseURL string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(testDatabaseURL, engine).Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
