package db_test

import (
	"context"
	"os"

	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg"
	"github.com/jackc/pgx/v4"
)

const pgAddrEnv = "SWAPD_TEST_PG_ADDR"

type namedRepoManager struct {
	name string
	ports.RepoManager
}

// repoManagers returns a fresh in-memory repo manager and, if the address of
// a test postgres instance is set in the environment, a pg one backed by an
// emptied db.
func repoManagers() ([]namedRepoManager, error) {
	managers := []namedRepoManager{
		{"inmemory", inmemory.NewRepoManager()},
	}

	addr := os.Getenv(pgAddrEnv)
	if len(addr) <= 0 {
		return managers, nil
	}

	if err := truncateTables(addr); err != nil {
		return nil, err
	}
	svc, err := postgresdb.NewService(postgresdb.DbConfig{
		ConnectAddr:        addr,
		MigrationSourceURL: "file://../pg/migration",
	})
	if err != nil {
		return nil, err
	}
	return append(managers, namedRepoManager{"postgres", svc}), nil
}

func truncateTables(addr string) error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(
		ctx, "SELECT to_regclass('public.swap') IS NOT NULL",
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return nil
	}

	_, err = conn.Exec(
		ctx,
		"TRUNCATE TABLE pending_ledger_write, ledger_record, escrow_holding, "+
			"proposal, swap CASCADE",
	)
	return err
}
