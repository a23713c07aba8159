// Package pgxutil bridges database/sql pools opened with the pgx stdlib driver
// to native pgx connections.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotPgx is returned when the pool was not opened with the pgx driver.
var ErrNotPgx = errors.New("driver connection is not a pgx stdlib connection")

// WithPgxConn checks out one pooled connection and hands its *pgx.Conn to fn.
// The connection goes back to the pool when fn returns.
func WithPgxConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
			err = errors.Join(err, fmt.Errorf("release conn: %w", cerr))
		}
	}()

	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrNotPgx, dc)
		}
		return fn(std.Conn())
	})
}
