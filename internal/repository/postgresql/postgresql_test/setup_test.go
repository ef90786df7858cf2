package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

// newTestDatabase connects to TEST_DATABASE_URL, migrates it and empties
// every table. Tests are skipped when the variable is unset.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.MigratePostgres(ctx, db))
	require.NoError(t, truncateAllTables(ctx, db))
	return db
}

func truncateAllTables(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"attendances", "leave_requests", "users"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func createTestUser(t *testing.T, repo postgresql.UserRepository, role user.Role, managerID *string) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, repo.Upsert(context.Background(), user.User{
		ID:        id,
		Name:      string(role) + " " + id[:8],
		Email:     id + "@example.com",
		Role:      role,
		ManagerID: managerID,
		CreatedAt: testNow,
	}))
	return id
}
