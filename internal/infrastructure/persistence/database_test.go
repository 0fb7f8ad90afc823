package persistence

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/missionpuck/logprinter/internal/infrastructure/config"
)

// newMockDatabase creates a postgres-dialect Database over a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, driver: "postgres"}, mock, mockDB
}

func TestNewDatabaseWithOptions(t *testing.T) {
	t.Run("opens in-memory sqlite", func(t *testing.T) {
		db, err := NewDatabaseWithOptions(&config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         ":memory:",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		}, Options{LogLevel: gormlogger.Silent})
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, "sqlite", db.Driver())
		assert.NoError(t, db.Ping())

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections, "memory databases are pinned to one connection")
	})

	t.Run("creates the directory of a sqlite file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "jobs.db")
		db, err := NewDatabaseWithOptions(&config.DatabaseConfig{
			Driver:       "sqlite",
			Path:         path,
			MaxOpenConns: 4,
			MaxIdleConns: 1,
		}, Options{TraceQueries: true})
		require.NoError(t, err)
		defer db.Close()

		assert.FileExists(t, path)
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		_, err := NewDatabaseWithOptions(&config.DatabaseConfig{Driver: "mysql"}, Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := db.Ping()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
	assert.Equal(t, "postgres", db.Driver())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)
	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSystem(t *testing.T) {
	assert.Equal(t, "postgresql", dbSystem("postgres"))
	assert.Equal(t, "sqlite", dbSystem("sqlite"))
	assert.Equal(t, "sqlite", dbSystem(""))
}
