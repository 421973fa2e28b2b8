// Package schema owns the bundled fixture DDL and the table-level
// maintenance around it: apply, wipe and count.
package schema

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"

	"github.com/Rana718/fixturegen/internal/database"
	"github.com/Rana718/fixturegen/internal/database/common"
)

//go:embed sql/*.sql
var ddl embed.FS

// Tables lists every fixture table, parents before children.
var Tables = []string{
	"user_auth",
	"user_profile",
	"article_categories",
	"article_tags",
	"resource_categories",
	"articles",
	"article_code_blocks",
	"article_category_relations",
	"article_tag_relations",
	"resources",
	"resource_images",
	"resource_tags",
	"article_comments",
	"resource_comments",
	"article_comment_likes",
	"resource_comment_likes",
	"chat_messages",
	"article_likes",
	"resource_likes",
	"user_login_history",
	"daily_metrics",
	"api_statistics",
	"user_statistics",
	"cumulative_statistics",
}

// DDL returns the bundled CREATE statements for provider.
func DDL(provider string) ([]string, error) {
	var file string
	switch provider {
	case "sqlite", "sqlite3":
		file = "sql/sqlite.sql"
	case "mysql":
		file = "sql/mysql.sql"
	case "postgres", "postgresql":
		file = "sql/postgres.sql"
	default:
		return nil, fmt.Errorf("no bundled schema for provider %s", provider)
	}
	content, err := ddl.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return common.ParseSQLStatements(string(content)), nil
}

// Apply creates any missing fixture tables. Existing tables are left alone.
func Apply(ctx context.Context, adapter database.Adapter) (int, error) {
	statements, err := DDL(adapter.Provider())
	if err != nil {
		return 0, err
	}
	for i, stmt := range statements {
		if _, err := adapter.DB().ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("failed to execute statement %d: %w", i+1, err)
		}
	}
	return len(statements), nil
}

// Truncate empties tables, children first, and resets their key sequences.
// Statements run on one connection so session settings such as MySQL's
// FOREIGN_KEY_CHECKS apply to all of them. The settings are restored even
// when a truncation fails; a connection that cannot be restored is discarded
// instead of going back to the pool.
func Truncate(ctx context.Context, adapter database.Adapter, tables []string) (err error) {
	conn, err := adapter.DB().Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	enter, leave := adapter.TruncateSession()
	defer func() {
		if restoreErr := restoreSession(context.WithoutCancel(ctx), conn, leave); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()
	for _, stmt := range enter {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare truncate session: %w", err)
		}
	}

	for i := len(tables) - 1; i >= 0; i-- {
		for _, stmt := range adapter.TruncateStatements(tables[i]) {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to truncate %s: %w", tables[i], err)
			}
		}
	}
	return nil
}

func restoreSession(ctx context.Context, conn *sql.Conn, leave []string) error {
	for _, stmt := range leave {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
			return fmt.Errorf("failed to restore truncate session: %w", err)
		}
	}
	return nil
}

// TableCount is one row of Counts.
type TableCount struct {
	Table string
	Rows  int64
	// Missing is set when the table does not exist yet.
	Missing bool
}

// Counts reports the row count of every fixture table.
func Counts(ctx context.Context, adapter database.Adapter) ([]TableCount, error) {
	qb := adapter.Builder()
	out := make([]TableCount, 0, len(Tables))
	for _, table := range Tables {
		query, args, err := qb.Select("COUNT(*)").From(table).ToSql()
		if err != nil {
			return nil, err
		}
		var n int64
		if err := adapter.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if adapter.Classify(err) == common.KindConnection {
				return nil, fmt.Errorf("failed to count %s: %w", table, err)
			}
			out = append(out, TableCount{Table: table, Missing: true})
			continue
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}
