package auth

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLiteDB opens a bun handle over the sqlite shim driver. Used by local
// development wiring and by repository tests; production deployments hand
// NewRepositoryManager their own *bun.DB.
func OpenSQLiteDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateUsersTable creates the users table when it does not exist. Schema
// migrations for the wider platform live outside this package; this only
// covers what the auth core itself reads and writes.
func CreateUsersTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// CreatePasswordResetsTable creates the password_reset table when it does
// not exist.
func CreatePasswordResetsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*PasswordReset)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// CreateAuthTables creates every table the auth core persists to.
func CreateAuthTables(ctx context.Context, db *bun.DB) error {
	if err := CreateUsersTable(ctx, db); err != nil {
		return err
	}
	return CreatePasswordResetsTable(ctx, db)
}
