package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/domain"
)

func TestClassify(t *testing.T) {
	other := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, domain.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "shift_assignments_active_unique"}, domain.ErrConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, domain.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "shift_assignments_staff_id_fkey"}, domain.ErrNotFound},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	assert.NoError(t, classify(nil))
	assert.NotErrorIs(t, classify(&pgconn.PgError{Code: "22001"}), domain.ErrConflict)
}

func TestUnchangedDeleteError(t *testing.T) {
	assert.ErrorIs(t, unchangedDeleteError(domain.StatusDeleted), domain.ErrAlreadyDeleted)

	err := unchangedDeleteError(domain.StatusScheduled)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrAlreadyDeleted)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql":   {Data: []byte("SELECT 2")},
		"migrations/0001_a.sql":   {Data: []byte("SELECT 1")},
		"migrations/0003_c.sql":   {Data: []byte("SELECT 3")},
		"migrations/README.md":    {Data: []byte("notes")},
		"migrations/old/0000.sql": {Data: []byte("SELECT 0")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{"0002_b.sql": true})

	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.sql", "0003_c.sql"}, pending)
}

func TestEmbeddedMigrations(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_roster_tables.sql", "0002_create_shift_assignments.sql"}, pending)
}
