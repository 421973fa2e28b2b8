package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database/common"
	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers treated as constraint violations.
const (
	errDupEntry         = 1062
	errNoReferencedRow  = 1216
	errRowIsReferenced  = 1217
	errRowIsReferenced2 = 1451
	errNoReferencedRow2 = 1452
	errBadNull          = 1048
	errCheckViolated    = 3819
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

func (m *Adapter) Provider() string { return "mysql" }

// Connect accepts either a go-sql-driver DSN or a mysql:// URL.
func (m *Adapter) Connect(ctx context.Context, url string) error {
	cfg, err := mysql.ParseDSN(toDSN(url))
	if err != nil {
		return fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	if _, ok := cfg.Params["charset"]; !ok {
		cfg.Params["charset"] = "utf8mb4"
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.db = db
	return nil
}

func toDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	atIndex := strings.LastIndex(dsn, "@")
	if atIndex <= 0 {
		return dsn
	}
	credentials := dsn[:atIndex]
	remainder := dsn[atIndex+1:]

	slashIndex := strings.Index(remainder, "/")
	if slashIndex <= 0 {
		return dsn
	}
	hostPort := remainder[:slashIndex]
	dbAndParams := remainder[slashIndex+1:]

	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=REQUIRED", "tls=skip-verify")
	dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=DISABLED", "tls=false")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
	dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")

	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Adapter) DB() *sql.DB { return m.db }

func (m *Adapter) Builder() squirrel.StatementBuilderType { return m.qb }

func (m *Adapter) InsertReturningID(ctx context.Context, q common.Querier, ins squirrel.InsertBuilder) (int64, error) {
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

func (m *Adapter) TruncateStatements(table string) []string {
	return []string{fmt.Sprintf("TRUNCATE TABLE `%s`", table)}
}

// TruncateSession disables foreign key checks: TRUNCATE refuses referenced tables otherwise.
func (m *Adapter) TruncateSession() (enter, leave []string) {
	return []string{"SET FOREIGN_KEY_CHECKS = 0"}, []string{"SET FOREIGN_KEY_CHECKS = 1"}
}

func (m *Adapter) Classify(err error) common.ErrorKind {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDupEntry, errNoReferencedRow, errRowIsReferenced, errRowIsReferenced2,
			errNoReferencedRow2, errBadNull, errCheckViolated:
			return common.KindConstraint
		}
		return common.KindOther
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return common.KindConnection
	}
	return common.ClassifyGeneric(err)
}
