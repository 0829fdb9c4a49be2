package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/coinpay/coinpay-api/pkg/migrations/swapdb"
	"github.com/coinpay/coinpay-api/pkg/pgutil"
)

func TestSwapDBMigrations_Apply(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, swapdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	pgutil.AssertTableExists(t, db, "swap_transactions")
	pgutil.AssertTableExists(t, db, "bun_migrations")

	pgutil.AssertIndexExists(t, db, "idx_swap_transactions_user_id")
	pgutil.AssertIndexExists(t, db, "idx_swap_transactions_wallet_address")
	pgutil.AssertIndexExists(t, db, "idx_swap_transactions_status")
	pgutil.AssertIndexExists(t, db, "idx_swap_transactions_transaction_hash")
}

func TestSwapDBMigrations_Idempotency(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, swapdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	pgutil.AssertTableExists(t, db, "swap_transactions")
}

func TestSwapDBMigrations_Rollback(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, swapdb.Migrations)

	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "swap_transactions")

	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	pgutil.AssertTableNotExists(t, db, "swap_transactions")
}
