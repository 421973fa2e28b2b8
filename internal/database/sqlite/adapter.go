package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database/common"
	"github.com/mattn/go-sqlite3"
)

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// FromDB wraps an already opened handle.
func FromDB(db *sql.DB) *Adapter {
	a := New()
	a.db = db
	return a
}

func (s *Adapter) Provider() string { return "sqlite" }

// Connect opens the database file in WAL mode without a shared cache, so
// readers outside the open write transaction see the last committed snapshot.
func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) DB() *sql.DB { return s.db }

func (s *Adapter) Builder() squirrel.StatementBuilderType { return s.qb }

func (s *Adapter) InsertReturningID(ctx context.Context, q common.Querier, ins squirrel.InsertBuilder) (int64, error) {
	query, args, err := ins.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Adapter) TruncateStatements(table string) []string {
	return []string{
		fmt.Sprintf(`DELETE FROM "%s"`, table),
		fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name = '%s'", table),
	}
}

func (s *Adapter) TruncateSession() (enter, leave []string) { return nil, nil }

func (s *Adapter) Classify(err error) common.ErrorKind {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrConstraint:
			return common.KindConstraint
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrNotADB:
			return common.KindConnection
		}
		return common.KindOther
	}
	return common.ClassifyGeneric(err)
}
