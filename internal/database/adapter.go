package database

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database/common"
)

// Adapter hides the provider differences the fixture engine cares about:
// placeholder style, how a generated key comes back, how tables are wiped
// and how driver errors are classified.
type Adapter interface {
	Provider() string
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	DB() *sql.DB
	Builder() squirrel.StatementBuilderType

	// InsertReturningID executes ins through q and returns the generated id.
	InsertReturningID(ctx context.Context, q common.Querier, ins squirrel.InsertBuilder) (int64, error)

	// TruncateStatements returns the statements that empty table and reset its key sequence.
	TruncateStatements(table string) []string

	// TruncateSession returns the session settings to apply before a series of
	// truncations and the statements that restore them afterwards.
	TruncateSession() (enter, leave []string)

	Classify(err error) common.ErrorKind
}
