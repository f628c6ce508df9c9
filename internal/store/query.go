package store

import (
	"context"
	"database/sql"
	"encoding/json"

	entsql "entgo.io/ent/dialect/sql"
)

// exec runs an INSERT, UPDATE or DELETE builder.
func (r repos) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	return r.q.ExecContext(ctx, query, args...)
}

// execOne runs q and returns ErrNotFound when it touched no rows.
func (r repos) execOne(ctx context.Context, q entsql.Querier) error {
	res, err := r.exec(ctx, q)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// each runs a selector and calls scan once per row. Rows are always fully
// drained and closed before returning, so the caller may issue the next
// statement on the same connection.
func (r repos) each(ctx context.Context, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// first is each limited to one row; it returns ErrNotFound on no rows.
func (r repos) first(ctx context.Context, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	found := false
	err := r.each(ctx, sel.Limit(1), func(rows *sql.Rows) error {
		found = true
		return scan(rows)
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// jsonText converts a raw JSON document to the string form used for JSON
// columns; nil becomes SQL NULL.
func jsonText(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
