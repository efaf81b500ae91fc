package repository

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/osnetwork/go-auth"
)

// OpenSQLite opens a bun database on the sqlite file or memory dsn.
// sqliteshim picks the cgo driver when available and the pure Go one
// otherwise.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "open sqlite")
	}
	// a single connection keeps ":memory:" databases shared across queries
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the users table when missing. The email column
// carries the unique constraint that settles concurrent registrations.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create users table")
	}
	return nil
}

// RunInTx runs f inside a transaction with a store bound to it
func RunInTx(ctx context.Context, db *bun.DB, f func(ctx context.Context, users *Users) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return f(ctx, NewUsers(tx))
	})
}
