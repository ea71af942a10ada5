//go:build integration

package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/luxera-dashboard/internal/migrations"
	"github.com/magabrotheeeer/luxera-dashboard/internal/storage/pgtest"
)

func TestRunMigrations(t *testing.T) {
	db := pgtest.Start(t)

	for _, table := range []string{"users", "sessions", "subscription_plans", "services",
		"user_subscriptions", "usage_logs", "contacts"} {
		var exists bool
		err := db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s should exist", table)
	}

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'user_subscriptions'
			AND indexname = 'user_subscriptions_one_active'
		)`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "partial unique index for active subscriptions should exist")
}

func TestMigrationIdempotency(t *testing.T) {
	db := pgtest.Start(t)

	require.NoError(t, migrations.Run(db))
	require.NoError(t, migrations.Run(db))
}
