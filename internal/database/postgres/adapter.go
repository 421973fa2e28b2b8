package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FromDB wraps an already opened handle.
func FromDB(db *sql.DB) *Adapter {
	a := New()
	a.db = db
	return a
}

func (p *Adapter) Provider() string { return "postgres" }

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgx.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.DefaultQueryExecMode = pgx.QueryExecModeExec

	db := stdlib.OpenDB(*config)
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	p.db = db
	return nil
}

func (p *Adapter) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Adapter) DB() *sql.DB { return p.db }

func (p *Adapter) Builder() squirrel.StatementBuilderType { return p.qb }

func (p *Adapter) InsertReturningID(ctx context.Context, q common.Querier, ins squirrel.InsertBuilder) (int64, error) {
	query, args, err := ins.PlaceholderFormat(squirrel.Dollar).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Adapter) TruncateStatements(table string) []string {
	return []string{
		fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", pq.QuoteIdentifier(table)),
	}
}

func (p *Adapter) TruncateSession() (enter, leave []string) { return nil, nil }

func (p *Adapter) Classify(err error) common.ErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return common.KindConstraint
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return common.KindConnection
		}
		return common.KindOther
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return common.KindConstraint
		case "08":
			return common.KindConnection
		}
		return common.KindOther
	}
	if pgconn.Timeout(err) {
		return common.KindConnection
	}
	return common.ClassifyGeneric(err)
}
