//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/infrastructure/config"
)

// newPostgresDatabase starts a PostgreSQL container and opens it through
// NewDatabaseWithOptions, the same path the server takes
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("logprinter_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabaseWithOptions(&config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		DBName:       "logprinter_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, Options{TraceQueries: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGormPrintJobRepository_Postgres(t *testing.T) {
	db := newPostgresDatabase(t)
	assert.Equal(t, "postgres", db.Driver())

	repo := NewGormPrintJobRepository(db.DB)
	require.NoError(t, repo.AutoMigrate())
	ctx := context.Background()

	missionID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		job := newTestJob(t, missionID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, job))
		ids = append(ids, job.ID)
	}

	// Upsert keeps one row per job.
	job, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, job.Advance(printing.JobStatusRendering))
	require.NoError(t, repo.Save(ctx, job))

	jobs, err := repo.FindByMission(ctx, missionID)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, ids[2], jobs[0].ID, "newest first")
	assert.Equal(t, printing.JobStatusRendering, jobs[2].Status)

	recent, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.MaxOpenConnections)
}
