package postgresdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/bushboy/bookingswap-sub023/internal/core/domain"
	"github.com/bushboy/bookingswap-sub023/internal/core/ports"
	"github.com/bushboy/bookingswap-sub023/internal/infrastructure/storage/db/pg/sqlc/queries"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	postgresDriver = "pgx"

	uniqueViolation = "23505"
)

var (
	// ErrAlreadyExists ...
	ErrAlreadyExists = errors.New("entity already exists")
)

type txKey struct{}

type repoManager struct {
	pgxPool *pgxpool.Pool
	querier *queries.Queries

	swapRepository     domain.SwapRepository
	proposalRepository domain.ProposalRepository
	escrowRepository   domain.EscrowRepository
	ledgerRepository   domain.LedgerRepository
}

type DbConfig struct {
	// ConnectAddr is the postgres connection string, in url or dsn format.
	ConnectAddr        string
	MigrationSourceURL string
}

func NewService(dbConfig DbConfig) (ports.RepoManager, error) {
	if len(dbConfig.ConnectAddr) <= 0 {
		return nil, fmt.Errorf("missing postgres connect address")
	}
	if len(dbConfig.MigrationSourceURL) <= 0 {
		return nil, fmt.Errorf("missing migration source url")
	}

	pgxPool, err := connect(dbConfig.ConnectAddr)
	if err != nil {
		return nil, err
	}

	if err = migrateDb(
		dbConfig.ConnectAddr, dbConfig.MigrationSourceURL,
	); err != nil {
		pgxPool.Close()
		return nil, err
	}

	rm := &repoManager{
		pgxPool: pgxPool,
		querier: queries.New(pgxPool),
	}

	rm.swapRepository = NewSwapRepositoryImpl(rm.querierFor)
	rm.proposalRepository = NewProposalRepositoryImpl(rm.querierFor)
	rm.escrowRepository = NewEscrowRepositoryImpl(rm.querierFor)
	rm.ledgerRepository = NewLedgerRepositoryImpl(rm.querierFor)

	return rm, nil
}

func (r *repoManager) SwapRepository() domain.SwapRepository {
	return r.swapRepository
}

func (r *repoManager) ProposalRepository() domain.ProposalRepository {
	return r.proposalRepository
}

func (r *repoManager) EscrowRepository() domain.EscrowRepository {
	return r.escrowRepository
}

func (r *repoManager) LedgerRepository() domain.LedgerRepository {
	return r.ledgerRepository
}

// RunTransaction runs the handler within a db transaction. Repositories
// called with the context passed to the handler use the transaction, hence
// the rows they lock stay locked until the handler returns.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if _, ok := ctx.Value(txKey{}).(*queries.Queries); ok {
		return handler(ctx)
	}

	var res interface{}
	opts := pgx.TxOptions{}
	if readOnly {
		opts.AccessMode = pgx.ReadOnly
	}

	if err := r.execTx(ctx, opts, func(querierWithTx *queries.Queries) error {
		var err error
		res, err = handler(context.WithValue(ctx, txKey{}, querierWithTx))
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Close() {
	r.pgxPool.Close()
}

// querierFor returns the querier bound to the transaction of the given
// context, if any, or the pool one otherwise.
func (r *repoManager) querierFor(ctx context.Context) *queries.Queries {
	if q, ok := ctx.Value(txKey{}).(*queries.Queries); ok {
		return q
	}
	return r.querier
}

func (r *repoManager) execTx(
	ctx context.Context,
	opts pgx.TxOptions,
	txBody func(*queries.Queries) error,
) error {
	conn, err := r.pgxPool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	// Rollback is safe to call even if the tx is already closed, so if
	// the tx commits successfully, this is a no-op.
	defer func() {
		err := tx.Rollback(context.Background())
		switch {
		// If the tx was already closed (it was successfully executed)
		// we do not need to log that error.
		case errors.Is(err, pgx.ErrTxClosed):
			return

		// If this is an unexpected error, log it.
		case err != nil:
			log.Errorf("unable to rollback db tx: %v", err)
		}
	}()

	if err := txBody(r.querier.WithTx(tx)); err != nil {
		return err
	}

	// Commit transaction.
	return tx.Commit(ctx)
}

func connect(dataSource string) (*pgxpool.Pool, error) {
	return pgxpool.Connect(context.Background(), dataSource)
}

func migrateDb(dataSource, migrationSourceUrl string) error {
	pg := postgres.Postgres{}

	d, err := pg.Open(dataSource)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationSourceUrl,
		postgresDriver,
		d,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(kind string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", kind, domain.ErrNotFound)
	}
	return err
}

func versionConflict(kind, id string) error {
	return fmt.Errorf(
		"%w: %s %s was modified concurrently", domain.ErrConflict, kind, id,
	)
}
