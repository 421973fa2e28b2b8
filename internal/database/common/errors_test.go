package common

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGeneric(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindOther},
		{"bad conn", driver.ErrBadConn, KindConnection},
		{"conn done", sql.ErrConnDone, KindConnection},
		{"wrapped bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), KindConnection},
		{"deadline", context.DeadlineExceeded, KindConnection},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, KindConnection},
		{"canceled", context.Canceled, KindOther},
		{"no rows", sql.ErrNoRows, KindOther},
		{"plain", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyGeneric(tt.err))
		})
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "constraint", KindConstraint.String())
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "other", ErrorKind(9).String())
}

func TestParseSQLStatements(t *testing.T) {
	script := `-- fixture tables
CREATE TABLE a (id INT, note TEXT DEFAULT 'x;y');
CREATE TABLE b (id INT);

`
	stmts := ParseSQLStatements(script)
	assert.Equal(t, []string{
		"CREATE TABLE a (id INT, note TEXT DEFAULT 'x;y')",
		"CREATE TABLE b (id INT)",
	}, stmts)
}
