//go:build integration

package recordstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"passport-admin-go/internal/domain/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE passport_applications (
	id SERIAL PRIMARY KEY,
	full_name TEXT,
	passport_type TEXT,
	status TEXT,
	submitted_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ
);
CREATE TABLE renewals (
	id SERIAL PRIMARY KEY,
	name TEXT,
	surname TEXT,
	passport_number TEXT,
	status TEXT,
	created_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ
);
INSERT INTO passport_applications (full_name, passport_type, submitted_at) VALUES
	('Older Applicant', '32 pages', '2024-01-01T00:00:00Z'),
	('Newer Applicant', '64 pages', '2024-06-01T00:00:00Z');
INSERT INTO renewals (name, surname, passport_number, status, created_at) VALUES
	('Lineo', 'Mosala', 'RA123456', 'Pending', '2024-03-01T00:00:00Z');
`

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("passports"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, schema)
	require.NoError(t, err)
	return db
}

func TestPostgresStore_Integration(t *testing.T) {
	db := startPostgres(t)
	store := NewPostgresStore(db, record.DefaultTables())
	ctx := context.Background()

	apps, err := store.List(ctx, record.KindApplications)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Newer Applicant", apps[0].FullName, "newest first")
	assert.Equal(t, record.ID("2"), apps[0].ID)
	assert.Equal(t, record.StatusPending, apps[0].EffectiveStatus())

	renewals, err := store.List(ctx, record.KindRenewals)
	require.NoError(t, err)
	require.Len(t, renewals, 1)
	assert.Equal(t, "RA123456", renewals[0].PassportNumber)

	now := time.Now().UTC()
	require.NoError(t, store.Update(ctx, record.KindApplications, "1", record.Patch{Status: record.StatusApproved, UpdatedAt: now}))

	apps, err = store.List(ctx, record.KindApplications)
	require.NoError(t, err)
	assert.Equal(t, record.StatusApproved, apps[1].Status)
	assert.NotEmpty(t, apps[1].UpdatedAt)

	err = store.Update(ctx, record.KindRenewals, "999", record.Patch{Status: record.StatusDeclined, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
