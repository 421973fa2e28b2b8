package fixture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database"
)

// CommitState is the lifecycle position of a BatchCommitter.
type CommitState int

const (
	StateIdle CommitState = iota
	StateAccumulating
	StateCommitting
	StateError
	StateRolledBack
	StateAborted
)

func (s CommitState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateCommitting:
		return "committing"
	case StateError:
		return "error"
	case StateRolledBack:
		return "rolled_back"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BatchCommitter owns the single write transaction of a generator run.
// Rows are inserted as they are staged so their generated keys are usable
// immediately; they become visible to other connections only when the batch
// commits. A failure rolls back the open batch and the committer refuses all
// further work. Batches committed earlier stay committed.
type BatchCommitter struct {
	adapter   database.Adapter
	name      string
	threshold int
	progress  ProgressReporter

	state     CommitState
	tx        *sql.Tx
	pending   int
	committed int
	flushes   int
	err       error
}

func NewBatchCommitter(adapter database.Adapter, name string, threshold int, progress ProgressReporter) *BatchCommitter {
	if threshold <= 0 {
		threshold = 1
	}
	if progress == nil {
		progress = NopProgress
	}
	return &BatchCommitter{
		adapter:   adapter,
		name:      name,
		threshold: threshold,
		progress:  progress,
	}
}

func (c *BatchCommitter) State() CommitState { return c.state }

// Pending is the number of rows staged in the open batch.
func (c *BatchCommitter) Pending() int { return c.pending }

// Committed is the number of rows in successfully committed batches.
func (c *BatchCommitter) Committed() int { return c.committed }

// Flushes is the number of successful commits.
func (c *BatchCommitter) Flushes() int { return c.flushes }

// Err is the failure that aborted the committer, if any.
func (c *BatchCommitter) Err() error { return c.err }

func (c *BatchCommitter) Builder() squirrel.StatementBuilderType {
	return c.adapter.Builder()
}

func (c *BatchCommitter) begin(ctx context.Context) error {
	if c.state == StateAborted {
		return ErrAborted
	}
	if c.tx != nil {
		return nil
	}
	tx, err := c.adapter.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.fail(ctx, "begin", "", err)
	}
	c.tx = tx
	c.state = StateAccumulating
	return nil
}

// Stage inserts row into table inside the open batch and returns its key.
func (c *BatchCommitter) Stage(ctx context.Context, table string, row Row) (int64, error) {
	if err := c.begin(ctx); err != nil {
		return 0, err
	}
	ins := c.adapter.Builder().Insert(table).SetMap(row)
	id, err := c.adapter.InsertReturningID(ctx, c.tx, ins)
	if err != nil {
		return 0, c.fail(ctx, "insert", table, err)
	}
	c.pending++
	return id, nil
}

// Exec runs an auxiliary statement (counter bump, lookup-free update) in the
// open batch. It does not count toward the threshold.
func (c *BatchCommitter) Exec(ctx context.Context, table string, stmt squirrel.Sqlizer) error {
	if err := c.begin(ctx); err != nil {
		return err
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return c.fail(ctx, "exec", table, err)
	}
	if _, err := c.tx.ExecContext(ctx, query, args...); err != nil {
		return c.fail(ctx, "exec", table, err)
	}
	return nil
}

// Lookup scans the first row of stmt into dest, reading through the open
// batch so uncommitted rows are visible. It reports false when no row matched.
func (c *BatchCommitter) Lookup(ctx context.Context, table string, stmt squirrel.Sqlizer, dest ...any) (bool, error) {
	if err := c.begin(ctx); err != nil {
		return false, err
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return false, c.fail(ctx, "lookup", table, err)
	}
	err = c.tx.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, c.fail(ctx, "lookup", table, err)
	}
	return true, nil
}

// MaybeFlush commits the open batch once it reached the threshold.
func (c *BatchCommitter) MaybeFlush(ctx context.Context) error {
	if c.state == StateAborted {
		return ErrAborted
	}
	if c.pending < c.threshold {
		return nil
	}
	return c.flush(ctx)
}

// Finalize commits whatever is left. The committer returns to Idle.
func (c *BatchCommitter) Finalize(ctx context.Context) error {
	if c.state == StateAborted {
		return ErrAborted
	}
	if c.tx == nil {
		return nil
	}
	return c.flush(ctx)
}

func (c *BatchCommitter) flush(ctx context.Context) error {
	if c.tx == nil {
		return nil
	}
	c.state = StateCommitting
	if err := c.tx.Commit(); err != nil {
		return c.fail(ctx, "commit", "", err)
	}
	c.tx = nil
	c.committed += c.pending
	c.pending = 0
	c.flushes++
	c.state = StateIdle
	c.progress.Flushed(c.name, c.committed)
	return nil
}

// Rollback discards the open batch and aborts the committer. Calling it after
// a failure already rolled back is a no-op.
func (c *BatchCommitter) Rollback(ctx context.Context) error {
	if c.state == StateAborted {
		return nil
	}
	err := c.rollback()
	c.state = StateAborted
	if c.err == nil {
		c.err = ErrAborted
	}
	return err
}

func (c *BatchCommitter) rollback() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	c.pending = 0
	c.state = StateRolledBack
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (c *BatchCommitter) fail(ctx context.Context, op, table string, err error) error {
	c.state = StateError
	pe := &PersistenceError{
		Op:    op,
		Table: table,
		Kind:  c.adapter.Classify(err),
		Err:   err,
	}
	if rbErr := c.rollback(); rbErr != nil {
		pe.Err = fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
	}
	c.state = StateAborted
	c.err = pe
	return pe
}
