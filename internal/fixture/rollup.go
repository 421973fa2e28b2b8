package fixture

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Rollup recomputes parent.Column from the child rows pointing at it.
type Rollup struct {
	ParentTable string
	Column      string
	ChildTable  string
	ForeignKey  string
	// Filter restricts which child rows count, e.g. squirrel.Eq{"c.status": 1}.
	// Child columns are referenced through the "c" alias.
	Filter squirrel.Sqlizer
	// Sum names a child column to add up instead of counting rows.
	Sum string
}

func (r Rollup) String() string {
	return fmt.Sprintf("%s.%s <- %s.%s", r.ParentTable, r.Column, r.ChildTable, r.ForeignKey)
}

func (r Rollup) validate() error {
	names := []string{r.ParentTable, r.Column, r.ChildTable, r.ForeignKey}
	if r.Sum != "" {
		names = append(names, r.Sum)
	}
	for _, n := range names {
		if !isValidIdentifier(n) {
			return fmt.Errorf("invalid identifier in rollup %s: %q", r, n)
		}
	}
	return nil
}

// ScalarRollup writes one aggregate into a keyed statistics row.
type ScalarRollup struct {
	Table    string
	KeyCol   string
	Key      string
	ValueCol string
	// Source must select a single integer; build it with the adapter's builder.
	Source squirrel.Sqlizer
}

// RollupUpdater overwrites denormalized counters from their source tables.
// Running it twice without data changes in between yields the same values.
type RollupUpdater struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewRollupUpdater(db *sql.DB, qb squirrel.StatementBuilderType) *RollupUpdater {
	return &RollupUpdater{db: db, qb: qb}
}

func (u *RollupUpdater) statement(r Rollup) (squirrel.UpdateBuilder, error) {
	if err := r.validate(); err != nil {
		return squirrel.UpdateBuilder{}, err
	}
	agg := "COUNT(*)"
	if r.Sum != "" {
		agg = fmt.Sprintf("COALESCE(SUM(c.%s), 0)", r.Sum)
	}
	// Inner builder keeps '?' so the outer builder numbers all placeholders.
	sub := squirrel.Select(agg).
		From(r.ChildTable + " c").
		Where(fmt.Sprintf("c.%s = %s.id", r.ForeignKey, r.ParentTable))
	if r.Filter != nil {
		sub = sub.Where(r.Filter)
	}
	return u.qb.Update(r.ParentTable).Set(r.Column, sub), nil
}

// Recompute runs one rollup in its own transaction and returns rows touched.
func (u *RollupUpdater) Recompute(ctx context.Context, r Rollup) (int64, error) {
	var n int64
	err := u.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		n, err = u.apply(ctx, tx, r)
		return err
	})
	return n, err
}

// RecomputeAll runs rollups in order inside a single transaction.
func (u *RollupUpdater) RecomputeAll(ctx context.Context, rollups ...Rollup) error {
	return u.inTx(ctx, func(tx *sql.Tx) error {
		for _, r := range rollups {
			if _, err := u.apply(ctx, tx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *RollupUpdater) apply(ctx context.Context, tx *sql.Tx, r Rollup) (int64, error) {
	stmt, err := u.statement(r)
	if err != nil {
		return 0, err
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &PersistenceError{Op: "rollup", Table: r.ParentTable, Err: fmt.Errorf("%s: %w", r, err)}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SetScalar overwrites s.ValueCol of the row keyed by s.Key.
func (u *RollupUpdater) SetScalar(ctx context.Context, s ScalarRollup) error {
	for _, n := range []string{s.Table, s.KeyCol, s.ValueCol} {
		if !isValidIdentifier(n) {
			return fmt.Errorf("invalid identifier in scalar rollup: %q", n)
		}
	}
	return u.inTx(ctx, func(tx *sql.Tx) error {
		var value int64
		query, args, err := s.Source.ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
			return &PersistenceError{Op: "rollup", Table: s.Table, Err: err}
		}
		upd := u.qb.Update(s.Table).
			Set(s.ValueCol, value).
			Where(squirrel.Eq{s.KeyCol: s.Key})
		query, args, err = upd.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return &PersistenceError{Op: "rollup", Table: s.Table, Err: err}
		}
		return nil
	})
}

func (u *RollupUpdater) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin", Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}
