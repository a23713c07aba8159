package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/crimetracker/crimetracker-api/internal/data/pgxutil"
)

// queryOne runs query on a pgx connection and scans exactly one row into T by
// column name. Missing rows surface as pgx.ErrNoRows.
func queryOne[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var out T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// queryAll is queryOne for any number of rows.
func queryAll[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]*T, error) {
	var rowsOut []T
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[T])
		return err
	})
	if err != nil {
		return nil, err
	}
	res := make([]*T, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// queryCount scans a single integer.
func queryCount(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var n int
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&n)
	})
	return n, err
}

// execAffected runs a statement and returns the affected row count.
func execAffected(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var n int64
	err := pgxutil.WithPgxConn(ctx, db, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return limit, max(offset, 0)
}
